package response

import (
	"net/http"

	"mmo-system/internal/model"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他表示错误
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, code int, message string, err error) {
	response := Response{
		Code:    code,
		Message: message,
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		response.Error = err.Error()
	}

	c.JSON(http.StatusOK, response)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, 500, message)
}

// ProfileInfo 玩家存档响应
type ProfileInfo struct {
	Name             string             `json:"name"`
	ExternalID       string             `json:"external_id,omitempty"`
	Loaded           bool               `json:"loaded"`
	SkillLevels      map[string]int     `json:"skill_levels"`
	SkillXP          map[string]float64 `json:"skill_xp"`
	AbilityCooldowns map[string]int64   `json:"ability_cooldowns"`
	RecallCooldown   int64              `json:"recall_cooldown"`
	PowerLevel       int                `json:"power_level"`
	Healthbar        string             `json:"healthbar"`
	TipsShown        int                `json:"tips_shown"`
}

// FilterProfileInfo 把存档投影转成响应格式
func FilterProfileInfo(profile *model.Profile) *ProfileInfo {
	if profile == nil {
		return nil
	}

	info := &ProfileInfo{
		Name:             profile.Name,
		ExternalID:       profile.ExternalID,
		Loaded:           profile.Loaded,
		SkillLevels:      make(map[string]int, len(profile.SkillLevels)),
		SkillXP:          make(map[string]float64, len(profile.SkillXP)),
		AbilityCooldowns: make(map[string]int64, len(profile.AbilityCooldowns)),
		RecallCooldown:   profile.RecallCooldown,
		PowerLevel:       profile.TotalLevel(),
		Healthbar:        string(profile.Healthbar),
		TipsShown:        profile.TipsShown,
	}
	for skill, level := range profile.SkillLevels {
		info.SkillLevels[string(skill)] = level
	}
	for skill, xp := range profile.SkillXP {
		info.SkillXP[string(skill)] = xp
	}
	for ability, deadline := range profile.AbilityCooldowns {
		info.AbilityCooldowns[string(ability)] = deadline
	}
	return info
}

// PartyInfo 队伍响应（不含口令哈希）
type PartyInfo struct {
	ID               uint                   `json:"id"`
	Name             string                 `json:"name"`
	LeaderID         uint                   `json:"leader_id"`
	Locked           bool                   `json:"locked"`
	HasPassword      bool                   `json:"has_password"`
	Level            int                    `json:"level"`
	XP               float64                `json:"xp"`
	AllyName         string                 `json:"ally_name,omitempty"`
	XPShareMode      string                 `json:"xp_share_mode"`
	ItemShareMode    string                 `json:"item_share_mode"`
	ShareLoot        bool                   `json:"share_loot"`
	ShareMining      bool                   `json:"share_mining"`
	ShareHerbalism   bool                   `json:"share_herbalism"`
	ShareWoodcutting bool                   `json:"share_woodcutting"`
	Members          []model.PartyMemberRef `json:"members"`
}

// FilterPartyInfo 过滤队伍信息，隐藏口令哈希
func FilterPartyInfo(party *model.Party) *PartyInfo {
	if party == nil {
		return nil
	}

	return &PartyInfo{
		ID:               party.ID,
		Name:             party.Name,
		LeaderID:         party.LeaderID,
		Locked:           party.Locked,
		HasPassword:      party.PasswordHash != nil,
		Level:            party.Level,
		XP:               party.XP,
		AllyName:         party.AllyName,
		XPShareMode:      party.XPShareMode,
		ItemShareMode:    party.ItemShareMode,
		ShareLoot:        party.ShareLoot,
		ShareMining:      party.ShareMining,
		ShareHerbalism:   party.ShareHerbalism,
		ShareWoodcutting: party.ShareWoodcutting,
		Members:          party.Members,
	}
}

// LeaderboardPageResponse 排行榜分页响应
type LeaderboardPageResponse struct {
	Skill   string      `json:"skill"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Entries interface{} `json:"entries"`
}

// RankResponse 名次查询响应
type RankResponse struct {
	Name       string         `json:"name"`
	SkillRanks map[string]int `json:"skill_ranks"`
	PowerRank  int            `json:"power_rank"`
}

// PurgeResponse 清理任务响应
type PurgeResponse struct {
	Purged int `json:"purged"`
}
