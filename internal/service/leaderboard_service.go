package service

import (
	"errors"

	"mmo-system/internal/model"
	"mmo-system/internal/repository"
	"mmo-system/pkg/redis"
)

// LeaderboardService 排行榜服务
// Redis 可用时做页级旁路缓存，不可用时直接查库
type LeaderboardService struct {
	leaderboardRepo *repository.LeaderboardRepository
}

// NewLeaderboardService 创建LeaderboardService实例
func NewLeaderboardService(leaderboardRepo *repository.LeaderboardRepository) *LeaderboardService {
	return &LeaderboardService{leaderboardRepo: leaderboardRepo}
}

// Page 读一页排行榜，skillName 为空表示综合榜
func (s *LeaderboardService) Page(skillName string, page, perPage int) ([]repository.LeaderboardEntry, error) {
	skill := model.Skill(skillName)
	if skillName != "" {
		parsed, ok := model.ParseSkill(skillName)
		if !ok {
			return nil, errors.New("未知技能: " + skillName)
		}
		skill = parsed
	}

	if redis.Enabled() {
		var cached []repository.LeaderboardEntry
		if err := redis.GetCachedLeaderboardPage(skillName, page, perPage, &cached); err == nil {
			return cached, nil
		}
	}

	entries, err := s.leaderboardRepo.Page(skill, page, perPage)
	if err != nil {
		return nil, err
	}

	if redis.Enabled() {
		// 缓存写失败不影响查询结果
		_ = redis.CacheLeaderboardPage(skillName, page, perPage, entries)
	}
	return entries, nil
}

// RankOf 查玩家在各榜上的名次
func (s *LeaderboardService) RankOf(name string) (map[model.Skill]int, int, error) {
	if name == "" {
		return nil, 0, errors.New("玩家名不能为空")
	}
	return s.leaderboardRepo.RankOf(name)
}
