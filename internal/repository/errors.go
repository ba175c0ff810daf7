package repository

import "errors"

// 仓储层哨兵错误，调用方用 errors.Is 区分业务性失败和基础设施失败
var (
	// ErrUserNotFound 账号不存在
	ErrUserNotFound = errors.New("user not found")

	// ErrNoLeaderboard 该技能没有独立排行榜（子技能）
	ErrNoLeaderboard = errors.New("skill has no leaderboard")

	// ErrPartyNotFound 队伍不存在
	ErrPartyNotFound = errors.New("party not found")

	// ErrPartyExists 队伍名已被占用
	ErrPartyExists = errors.New("party already exists")

	// ErrSaveIncomplete 分步存档中途失败，已写入的步骤不回滚
	ErrSaveIncomplete = errors.New("save incomplete")

	// ErrPasswordMismatch 队伍口令不匹配
	ErrPasswordMismatch = errors.New("party password mismatch")
)
