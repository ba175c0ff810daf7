package handler

import (
	"errors"

	"mmo-system/internal/repository"
	"mmo-system/internal/service"
	"mmo-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// PartyHandler 队伍处理器
type PartyHandler struct {
	service *service.PartyService
}

// NewPartyHandler 创建PartyHandler实例
func NewPartyHandler(s *service.PartyService) *PartyHandler {
	return &PartyHandler{service: s}
}

// CreateParty 建队
// POST /api/parties
func (h *PartyHandler) CreateParty(c *gin.Context) {
	type req struct {
		Name             string `json:"name" binding:"required"`
		LeaderName       string `json:"leader_name" binding:"required"`
		LeaderExternalID string `json:"leader_external_id"`
		Password         string `json:"password"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	party, err := h.service.CreateParty(r.Name, r.LeaderName, r.LeaderExternalID, r.Password)
	if err != nil {
		if errors.Is(err, repository.ErrPartyExists) {
			response.Error(c, 409, "队伍名已被占用")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "建队成功", response.FilterPartyInfo(party))
}

// ListParties 全部队伍
// GET /api/parties
func (h *PartyHandler) ListParties(c *gin.Context) {
	parties, err := h.service.ListParties()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	infos := make([]*response.PartyInfo, 0, len(parties))
	for _, party := range parties {
		infos = append(infos, response.FilterPartyInfo(party))
	}
	response.Success(c, infos)
}

// GetParty 按名字查队伍
// GET /api/parties/:name
func (h *PartyHandler) GetParty(c *gin.Context) {
	party, err := h.service.GetParty(c.Param("name"))
	if err != nil {
		if errors.Is(err, repository.ErrPartyNotFound) {
			response.NotFound(c, "队伍不存在")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, response.FilterPartyInfo(party))
}

// JoinParty 入队
// POST /api/parties/:name/members
func (h *PartyHandler) JoinParty(c *gin.Context) {
	type req struct {
		UserName   string `json:"user_name" binding:"required"`
		ExternalID string `json:"external_id"`
		Password   string `json:"password"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.service.JoinParty(c.Param("name"), r.UserName, r.ExternalID, r.Password)
	if err != nil {
		if errors.Is(err, repository.ErrPartyNotFound) {
			response.NotFound(c, "队伍不存在")
			return
		}
		if errors.Is(err, repository.ErrPasswordMismatch) {
			response.Unauthorized(c, "队伍口令不正确")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "入队成功", nil)
}

// LeaveParty 退队
// DELETE /api/parties/members/:user
func (h *PartyHandler) LeaveParty(c *gin.Context) {
	if err := h.service.LeaveParty(c.Param("user")); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "账号不存在")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "退队成功", nil)
}

// DisbandParty 解散队伍
// DELETE /api/parties/:name
func (h *PartyHandler) DisbandParty(c *gin.Context) {
	if err := h.service.DisbandParty(c.Param("name")); err != nil {
		if errors.Is(err, repository.ErrPartyNotFound) {
			response.NotFound(c, "队伍不存在")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "队伍已解散", nil)
}

// SetLeader 换队长
// PUT /api/parties/:name/leader
func (h *PartyHandler) SetLeader(c *gin.Context) {
	type req struct {
		LeaderName string `json:"leader_name" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetLeader(c.Param("name"), r.LeaderName); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "队长已更换", nil)
}

// FormAlliance 结盟
// PUT /api/parties/:name/ally
func (h *PartyHandler) FormAlliance(c *gin.Context) {
	type req struct {
		AllyName string `json:"ally_name" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.FormAlliance(c.Param("name"), r.AllyName); err != nil {
		if errors.Is(err, repository.ErrPartyNotFound) {
			response.NotFound(c, "队伍不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "结盟成功", nil)
}

// DisbandAlliance 解除盟约
// DELETE /api/parties/:name/ally
func (h *PartyHandler) DisbandAlliance(c *gin.Context) {
	if err := h.service.DisbandAlliance(c.Param("name")); err != nil {
		if errors.Is(err, repository.ErrPartyNotFound) {
			response.NotFound(c, "队伍不存在")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "盟约已解除", nil)
}

// UpdateParty 写回队伍状态
// PUT /api/parties/:name
func (h *PartyHandler) UpdateParty(c *gin.Context) {
	party, err := h.service.GetParty(c.Param("name"))
	if err != nil {
		if errors.Is(err, repository.ErrPartyNotFound) {
			response.NotFound(c, "队伍不存在")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	type req struct {
		Locked           *bool    `json:"locked"`
		Level            *int     `json:"level"`
		XP               *float64 `json:"xp"`
		XPShareMode      *string  `json:"xp_share_mode"`
		ItemShareMode    *string  `json:"item_share_mode"`
		ShareLoot        *bool    `json:"share_loot"`
		ShareMining      *bool    `json:"share_mining"`
		ShareHerbalism   *bool    `json:"share_herbalism"`
		ShareWoodcutting *bool    `json:"share_woodcutting"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if r.Locked != nil {
		party.Locked = *r.Locked
	}
	if r.Level != nil {
		party.Level = *r.Level
	}
	if r.XP != nil {
		party.XP = *r.XP
	}
	if r.XPShareMode != nil {
		party.XPShareMode = *r.XPShareMode
	}
	if r.ItemShareMode != nil {
		party.ItemShareMode = *r.ItemShareMode
	}
	if r.ShareLoot != nil {
		party.ShareLoot = *r.ShareLoot
	}
	if r.ShareMining != nil {
		party.ShareMining = *r.ShareMining
	}
	if r.ShareHerbalism != nil {
		party.ShareHerbalism = *r.ShareHerbalism
	}
	if r.ShareWoodcutting != nil {
		party.ShareWoodcutting = *r.ShareWoodcutting
	}

	if err := h.service.SaveParty(party); err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "队伍已更新", response.FilterPartyInfo(party))
}
