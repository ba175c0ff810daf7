package redis

import (
	"encoding/json"
	"fmt"
	"time"
)

// 排行榜缓存相关常量
const (
	LeaderboardKeyPrefix = "mmo:leaderboard:" // 排行榜页缓存key前缀
)

// LeaderboardCacheTTL 排行榜页缓存TTL
// 榜单允许短暂滞后，过期后下一次查询回源重建
var LeaderboardCacheTTL = 1 * time.Minute

// SetCacheConfig 设置缓存配置
func SetCacheConfig(leaderboardTTL time.Duration) {
	if leaderboardTTL > 0 {
		LeaderboardCacheTTL = leaderboardTTL
	}
}

// leaderboardKey 综合榜的 skill 为空串，用 power 占位
func leaderboardKey(skill string, page, perPage int) string {
	if skill == "" {
		skill = "power"
	}
	return fmt.Sprintf("%s%s:%d:%d", LeaderboardKeyPrefix, skill, page, perPage)
}

// CacheLeaderboardPage 缓存一页排行榜
func CacheLeaderboardPage(skill string, page, perPage int, entries interface{}) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("序列化排行榜失败: %w", err)
	}
	return Set(leaderboardKey(skill, page, perPage), data, LeaderboardCacheTTL)
}

// GetCachedLeaderboardPage 获取缓存的排行榜页，结果反序列化进 dest
func GetCachedLeaderboardPage(skill string, page, perPage int, dest interface{}) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	data, err := Get(leaderboardKey(skill, page, perPage))
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("反序列化排行榜失败: %w", err)
	}
	return nil
}

// ClearLeaderboardCache 清空全部排行榜页缓存（批量清理之后调用）
func ClearLeaderboardCache() error {
	if client == nil {
		return nil
	}
	return DelByPattern(LeaderboardKeyPrefix + "*")
}
