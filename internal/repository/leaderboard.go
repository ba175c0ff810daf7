package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"mmo-system/internal/model"
	"mmo-system/pkg/db"
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// LeaderboardRepository 排行榜查询
// 等级列都有索引，直接在数据库侧排序分页。
// 并列名次按名字字母序排出稳定顺序，同等级的块内名次连续
type LeaderboardRepository struct {
	pools *db.Manager
}

// NewLeaderboardRepository 创建LeaderboardRepository实例
func NewLeaderboardRepository(pools *db.Manager) *LeaderboardRepository {
	return &LeaderboardRepository{pools: pools}
}

// leaderboardColumn 把技能映射到等级列
// 空技能表示综合榜（total 列），子技能没有自己的榜
func leaderboardColumn(skill model.Skill) (string, error) {
	if skill == "" {
		return "total", nil
	}
	if skill.IsChild() {
		return "", fmt.Errorf("%w: %s", ErrNoLeaderboard, skill)
	}
	if _, ok := model.ParseSkill(string(skill)); !ok {
		return "", fmt.Errorf("未知技能: %s", skill)
	}
	return string(skill), nil
}

// Page 读一页排行榜，page 从 1 开始
// 等级为 0 的和退役账号不上榜
func (r *LeaderboardRepository) Page(skill model.Skill, page, perPage int) ([]LeaderboardEntry, error) {
	column, err := leaderboardColumn(skill)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	offset := (page - 1) * perPage

	skills := model.Skills{}.TableName()
	users := model.User{}.TableName()

	var rows []struct {
		Name  string
		Level int
	}
	err = r.pools.Acquire(db.RoleMisc).
		Table(skills+" s").
		Select("u.name, s."+column+" AS level").
		Joins("JOIN "+users+" u ON u.id = s.user_id").
		Where("s."+column+" > 0 AND u.retired = ?", false).
		Order("s." + column + " DESC, u.name").
		Limit(perPage).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, LeaderboardEntry{
			Rank:  offset + i + 1,
			Name:  row.Name,
			Level: row.Level,
		})
	}
	return entries, nil
}

// RankOf 查一个玩家在每个主技能榜和综合榜上的名次
// 返回值里 0 表示未上榜（等级为 0 或账号不在册）
func (r *LeaderboardRepository) RankOf(name string) (map[model.Skill]int, int, error) {
	ranks := make(map[model.Skill]int, len(model.PrimarySkills))
	for _, skill := range model.PrimarySkills {
		rank, err := r.rankForColumn(string(skill), name)
		if err != nil {
			return nil, 0, err
		}
		ranks[skill] = rank
	}

	powerRank, err := r.rankForColumn("total", name)
	if err != nil {
		return nil, 0, err
	}
	return ranks, powerRank, nil
}

// rankForColumn 名次 = 严格高于我的行数 + 同等级里名字排我前面的行数 + 1
func (r *LeaderboardRepository) rankForColumn(column, name string) (int, error) {
	gdb := r.pools.Acquire(db.RoleMisc)
	skills := model.Skills{}.TableName()
	users := model.User{}.TableName()

	var level int
	err := gdb.Table(skills+" s").
		Select("s."+column).
		Joins("JOIN "+users+" u ON u.id = s.user_id").
		Where("u.name = ? AND u.retired = ?", name, false).
		Row().Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if level <= 0 {
		return 0, nil
	}

	var higher int64
	err = gdb.Table(skills+" s").
		Joins("JOIN "+users+" u ON u.id = s.user_id").
		Where("s."+column+" > ? AND u.retired = ?", level, false).
		Count(&higher).Error
	if err != nil {
		return 0, err
	}

	var tiesBefore int64
	err = gdb.Table(skills+" s").
		Joins("JOIN "+users+" u ON u.id = s.user_id").
		Where("s."+column+" = ? AND u.name < ? AND u.retired = ?", level, name, false).
		Count(&tiesBefore).Error
	if err != nil {
		return 0, err
	}

	return int(higher + tiesBefore + 1), nil
}
