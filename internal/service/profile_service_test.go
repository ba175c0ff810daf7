package service

import (
	"strings"
	"testing"

	"mmo-system/internal/model"
)

// 校验在落库之前完成，这里不需要真实仓储
func newValidationOnlyProfileService() *ProfileService {
	return NewProfileService(nil, nil)
}

func TestSaveProfileRejectsUnknownSkill(t *testing.T) {
	svc := newValidationOnlyProfileService()

	profile := model.NewProfile("Typo", true)
	profile.SkillLevels[model.Skill("minning")] = 10

	err := svc.SaveProfile(profile)
	if err == nil || !strings.Contains(err.Error(), "minning") {
		t.Fatalf("未知技能应被拒绝，得到 %v", err)
	}
}

func TestSaveProfileRejectsUnknownAbility(t *testing.T) {
	svc := newValidationOnlyProfileService()

	// 写错的冷却键不能悄悄丢掉
	profile := model.NewProfile("Typo", true)
	profile.AbilityCooldowns[model.Ability("beserk")] = 1000

	err := svc.SaveProfile(profile)
	if err == nil || !strings.Contains(err.Error(), "beserk") {
		t.Fatalf("未知限时技能应被拒绝，得到 %v", err)
	}
}

func TestSaveProfileRejectsChildSkillLevel(t *testing.T) {
	svc := newValidationOnlyProfileService()

	profile := model.NewProfile("Smelter", true)
	profile.SkillLevels[model.SkillSmelting] = 5

	if err := svc.SaveProfile(profile); err == nil {
		t.Fatal("子技能不应接受独立等级")
	}
}
