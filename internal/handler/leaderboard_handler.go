package handler

import (
	"errors"
	"strconv"

	"mmo-system/internal/repository"
	"mmo-system/internal/service"
	"mmo-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// LeaderboardHandler 排行榜处理器
type LeaderboardHandler struct {
	service *service.LeaderboardService
}

// NewLeaderboardHandler 创建LeaderboardHandler实例
func NewLeaderboardHandler(s *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: s}
}

// Page 读一页排行榜
// GET /api/leaderboards/:skill?page=1&per_page=10（skill 用 power 表示综合榜）
func (h *LeaderboardHandler) Page(c *gin.Context) {
	skill := c.Param("skill")
	if skill == "power" {
		skill = ""
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	entries, err := h.service.Page(skill, page, perPage)
	if err != nil {
		if errors.Is(err, repository.ErrNoLeaderboard) {
			response.BadRequest(c, "该技能没有独立排行榜")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, response.LeaderboardPageResponse{
		Skill:   c.Param("skill"),
		Page:    page,
		PerPage: perPage,
		Entries: entries,
	})
}

// RankOf 查玩家名次
// GET /api/ranks/:name
func (h *LeaderboardHandler) RankOf(c *gin.Context) {
	name := c.Param("name")

	skillRanks, powerRank, err := h.service.RankOf(name)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	ranks := make(map[string]int, len(skillRanks))
	for skill, rank := range skillRanks {
		ranks[string(skill)] = rank
	}
	response.Success(c, response.RankResponse{
		Name:       name,
		SkillRanks: ranks,
		PowerRank:  powerRank,
	})
}
