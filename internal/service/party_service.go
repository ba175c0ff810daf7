package service

import (
	"errors"

	"mmo-system/internal/model"
	"mmo-system/internal/repository"
)

// PartyService 队伍服务
type PartyService struct {
	partyRepo *repository.PartyRepository
}

// NewPartyService 创建PartyService实例
func NewPartyService(partyRepo *repository.PartyRepository) *PartyService {
	return &PartyService{partyRepo: partyRepo}
}

// CreateParty 建队，队长自动入队
func (s *PartyService) CreateParty(name, leaderName, leaderExternalID, password string) (*model.Party, error) {
	if name == "" || leaderName == "" {
		return nil, errors.New("队伍名和队长名不能为空")
	}

	party := &model.Party{
		Name:          name,
		XPShareMode:   string(model.ShareNone),
		ItemShareMode: string(model.ShareNone),
	}
	if err := s.partyRepo.Create(party, password); err != nil {
		return nil, err
	}

	if err := s.partyRepo.AddMember(name, leaderName, leaderExternalID); err != nil {
		return nil, err
	}
	if err := s.partyRepo.SetLeader(name, leaderName); err != nil {
		return nil, err
	}
	return s.partyRepo.GetByName(name)
}

// JoinParty 入队，锁定的队伍拒绝加入，有口令的队伍先验口令
func (s *PartyService) JoinParty(partyName, userName, externalID, password string) error {
	party, err := s.partyRepo.GetByName(partyName)
	if err != nil {
		return err
	}
	if party.Locked {
		return errors.New("队伍已锁定")
	}
	if err := s.partyRepo.CheckPassword(partyName, password); err != nil {
		return err
	}
	return s.partyRepo.AddMember(partyName, userName, externalID)
}

// LeaveParty 退队
func (s *PartyService) LeaveParty(userName string) error {
	return s.partyRepo.RemoveMember(userName)
}

// DisbandParty 解散队伍
func (s *PartyService) DisbandParty(name string) error {
	return s.partyRepo.Delete(name)
}

// SetLeader 换队长
func (s *PartyService) SetLeader(partyName, leaderName string) error {
	return s.partyRepo.SetLeader(partyName, leaderName)
}

// FormAlliance 结盟
func (s *PartyService) FormAlliance(nameA, nameB string) error {
	if nameA == nameB {
		return errors.New("队伍不能和自己结盟")
	}
	return s.partyRepo.SetAllies(nameA, nameB)
}

// DisbandAlliance 解除盟约
func (s *PartyService) DisbandAlliance(name string) error {
	return s.partyRepo.DisbandAlliance(name)
}

// GetParty 按名字查队伍（含成员列表）
func (s *PartyService) GetParty(name string) (*model.Party, error) {
	parties, err := s.partyRepo.LoadParties()
	if err != nil {
		return nil, err
	}
	for _, party := range parties {
		if party.Name == name {
			return party, nil
		}
	}
	return nil, repository.ErrPartyNotFound
}

// ListParties 全部队伍
func (s *PartyService) ListParties() ([]*model.Party, error) {
	return s.partyRepo.LoadParties()
}

// SaveParty 写回队伍状态，分享模式在这里规整
func (s *PartyService) SaveParty(party *model.Party) error {
	if party == nil || party.ID == 0 {
		return errors.New("队伍不存在")
	}
	party.XPShareMode = string(model.ParseShareMode(party.XPShareMode))
	party.ItemShareMode = string(model.ParseShareMode(party.ItemShareMode))
	return s.partyRepo.Save(party)
}

// SaveParties 批量写回
func (s *PartyService) SaveParties(parties []*model.Party) error {
	for _, party := range parties {
		party.XPShareMode = string(model.ParseShareMode(party.XPShareMode))
		party.ItemShareMode = string(model.ParseShareMode(party.ItemShareMode))
	}
	return s.partyRepo.SaveParties(parties)
}

// PartyExists 队伍名是否已被占用
func (s *PartyService) PartyExists(name string) (bool, error) {
	return s.partyRepo.PartyExists(name)
}
