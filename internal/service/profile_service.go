package service

import (
	"errors"

	"mmo-system/internal/model"
	"mmo-system/internal/repository"
)

// ProfileService 存档服务
type ProfileService struct {
	profileRepo  *repository.ProfileRepository
	identityRepo *repository.IdentityRepository
}

// NewProfileService 创建ProfileService实例
func NewProfileService(profileRepo *repository.ProfileRepository, identityRepo *repository.IdentityRepository) *ProfileService {
	return &ProfileService{
		profileRepo:  profileRepo,
		identityRepo: identityRepo,
	}
}

// LoadProfile 读档
func (s *ProfileService) LoadProfile(name, externalID string, create bool) (*model.Profile, error) {
	if name == "" {
		return nil, errors.New("玩家名不能为空")
	}
	return s.profileRepo.Load(name, externalID, create)
}

// SaveProfile 存档
// 未加载的档案在仓储层会被拒绝
func (s *ProfileService) SaveProfile(profile *model.Profile) error {
	if profile == nil || profile.Name == "" {
		return errors.New("玩家名不能为空")
	}

	// 等级规整：负数和未知技能一律不接受
	for skill := range profile.SkillLevels {
		if _, ok := model.ParseSkill(string(skill)); !ok || skill.IsChild() {
			return errors.New("未知技能: " + string(skill))
		}
		if profile.SkillLevels[skill] < 0 {
			profile.SkillLevels[skill] = 0
		}
	}
	for skill := range profile.SkillXP {
		if profile.SkillXP[skill] < 0 {
			profile.SkillXP[skill] = 0
		}
	}
	// 冷却键也要校验，写错的技能名不能悄悄丢掉
	for ability := range profile.AbilityCooldowns {
		if _, ok := model.ParseAbility(string(ability)); !ok {
			return errors.New("未知限时技能: " + string(ability))
		}
	}

	return s.profileRepo.Save(profile)
}

// SaveExternalID 给账号补写外部标识
func (s *ProfileService) SaveExternalID(name, externalID string) error {
	if name == "" || externalID == "" {
		return errors.New("玩家名和外部标识不能为空")
	}
	return s.profileRepo.SaveExternalID(name, externalID)
}

// SaveExternalIDs 批量补写外部标识
func (s *ProfileService) SaveExternalIDs(ids map[string]string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.profileRepo.SaveExternalIDs(ids)
}

// StoredUserNames 全部在册账号名
func (s *ProfileService) StoredUserNames() ([]string, error) {
	return s.profileRepo.StoredUserNames()
}
