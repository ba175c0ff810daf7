package handler

import (
	"errors"

	"mmo-system/internal/model"
	"mmo-system/internal/repository"
	"mmo-system/internal/service"
	"mmo-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 存档处理器
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler 创建ProfileHandler实例
func NewProfileHandler(s *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: s}
}

// LoadProfile 读档
// GET /api/profiles/:name?external_id=xxx&create=true
func (h *ProfileHandler) LoadProfile(c *gin.Context) {
	name := c.Param("name")
	externalID := c.Query("external_id")
	create := c.Query("create") == "true"

	profile, err := h.service.LoadProfile(name, externalID, create)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, response.FilterProfileInfo(profile))
}

// SaveProfile 存档
// PUT /api/profiles/:name
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	name := c.Param("name")

	type req struct {
		ExternalID       string             `json:"external_id"`
		SkillLevels      map[string]int     `json:"skill_levels"`
		SkillXP          map[string]float64 `json:"skill_xp"`
		AbilityCooldowns map[string]int64   `json:"ability_cooldowns"`
		RecallCooldown   int64              `json:"recall_cooldown"`
		Healthbar        string             `json:"healthbar"`
		TipsShown        int                `json:"tips_shown"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile := model.NewProfile(name, true)
	profile.ExternalID = r.ExternalID
	for skillName, level := range r.SkillLevels {
		profile.SkillLevels[model.Skill(skillName)] = level
	}
	for skillName, xp := range r.SkillXP {
		profile.SkillXP[model.Skill(skillName)] = xp
	}
	for abilityName, deadline := range r.AbilityCooldowns {
		profile.AbilityCooldowns[model.Ability(abilityName)] = deadline
	}
	profile.RecallCooldown = r.RecallCooldown
	profile.Healthbar = model.ParseHealthbarMode(r.Healthbar, model.HealthbarHearts)
	profile.TipsShown = r.TipsShown

	if err := h.service.SaveProfile(profile); err != nil {
		if errors.Is(err, repository.ErrSaveIncomplete) {
			response.Error(c, 409, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "存档成功", nil)
}

// SaveExternalID 补写外部标识
// PUT /api/profiles/:name/external-id
func (h *ProfileHandler) SaveExternalID(c *gin.Context) {
	name := c.Param("name")

	type req struct {
		ExternalID string `json:"external_id" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SaveExternalID(name, r.ExternalID); err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, nil)
}
