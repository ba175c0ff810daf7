package repository

import (
	"errors"
	"sync"
	"time"

	"mmo-system/config"
	"mmo-system/internal/model"
	"mmo-system/pkg/db"
	"mmo-system/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityRepository 账号身份仓储
// 把名字加外部标识解析成内部ID，带进程内缓存。
// 缓存只是旁路加速，数据库永远是事实来源，未命中就查库
type IdentityRepository struct {
	pools *db.Manager
	game  config.GameConfig
	cache sync.Map // 外部标识 -> 内部ID
}

// NewIdentityRepository 创建IdentityRepository实例
func NewIdentityRepository(pools *db.Manager, game config.GameConfig) *IdentityRepository {
	return &IdentityRepository{pools: pools, game: game}
}

// CachedID 只查缓存，不落库
// 名字会变也会被人顶替，缓存只能按外部标识键入
func (r *IdentityRepository) CachedID(externalID string) (uint, bool) {
	if externalID == "" {
		return 0, false
	}
	if v, ok := r.cache.Load(externalID); ok {
		return v.(uint), true
	}
	return 0, false
}

// Resolve 解析已有账号的内部ID，查不到返回 ErrUserNotFound
// 外部标识优先匹配；没有外部标识的存量行按名字匹配，
// 这样老行第一次被带着外部标识访问时也能找回来。
// 只带名字时直接按名字找（退役行除外），队伍和转存流程都走这条路
func (r *IdentityRepository) Resolve(name, externalID string) (uint, error) {
	if id, ok := r.CachedID(externalID); ok {
		return id, nil
	}

	var row model.User
	q := r.pools.Acquire(db.RoleMisc).Select("id", "name")
	// 退役行不再参与名字匹配
	if externalID != "" {
		q = q.Where("external_id = ? OR (external_id IS NULL AND name = ? AND retired = ?)", externalID, name, false)
	} else {
		q = q.Where("name = ? AND retired = ?", name, false)
	}
	err := q.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	if externalID != "" {
		r.cache.Store(externalID, row.ID)
	}
	return row.ID, nil
}

// Create 新建账号和全套子表行，返回新内部ID
// 同名的其它在册账号先打退役标记，保证任意时刻一个名字
// 至多对应一个在册账号
func (r *IdentityRepository) Create(name, externalID string) (uint, error) {
	gdb := r.pools.Acquire(db.RoleMisc)

	if err := r.retireNameHolders(gdb, name, externalID); err != nil {
		return 0, err
	}

	user := model.User{
		Name:      name,
		LastLogin: time.Now().Unix(),
	}
	if externalID != "" {
		user.ExternalID = &externalID
	}
	if err := gdb.Create(&user).Error; err != nil {
		return 0, err
	}

	if err := ensureChildRows(gdb, user.ID, r.game); err != nil {
		return 0, err
	}

	if externalID != "" {
		r.cache.Store(externalID, user.ID)
	}
	logger.Info("新建账号",
		zap.String("name", name),
		zap.Uint("id", user.ID),
	)
	return user.ID, nil
}

// EnsureUser 解析账号，不存在就新建
func (r *IdentityRepository) EnsureUser(name, externalID string) (uint, error) {
	id, err := r.Resolve(name, externalID)
	if errors.Is(err, ErrUserNotFound) {
		return r.Create(name, externalID)
	}
	return id, err
}

// ReconcileName 玩家改名后把行里的名字换成当前名字
// 先把新名字的其它在册持有者退役再改；缓存按外部标识键入，改名不影响
func (r *IdentityRepository) ReconcileName(id uint, name string) error {
	gdb := r.pools.Acquire(db.RoleMisc)

	err := gdb.Model(&model.User{}).
		Where("name = ? AND id <> ? AND retired = ?", name, id, false).
		Update("retired", true).Error
	if err != nil {
		return err
	}

	return gdb.Model(&model.User{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// Invalidate 失效单个外部标识的缓存项（账号删除后调用）
func (r *IdentityRepository) Invalidate(externalID string) {
	if externalID != "" {
		r.cache.Delete(externalID)
	}
}

// InvalidateAll 清空缓存（批量清理任务之后调用）
func (r *IdentityRepository) InvalidateAll() {
	r.cache.Range(func(key, _ interface{}) bool {
		r.cache.Delete(key)
		return true
	})
}

// retireNameHolders 把占用这个名字的其它在册账号标记退役
func (r *IdentityRepository) retireNameHolders(gdb *gorm.DB, name, externalID string) error {
	q := gdb.Model(&model.User{}).Where("name = ? AND retired = ?", name, false)
	if externalID != "" {
		q = q.Where("external_id IS NULL OR external_id <> ?", externalID)
	}
	return q.Update("retired", true).Error
}

// ensureChildRows 补齐四张子表的行，已有的行保持不动
// 读档和建号都会走到这里，所以必须可以安全重复执行
func ensureChildRows(gdb *gorm.DB, userID uint, game config.GameConfig) error {
	ignore := clause.OnConflict{DoNothing: true}

	skills := model.Skills{UserID: userID}
	if game.StartingLevel > 0 {
		levels := make(map[model.Skill]int, len(model.PrimarySkills))
		for _, skill := range model.PrimarySkills {
			levels[skill] = game.StartingLevel
		}
		skills.SetLevels(levels)
	}
	if err := gdb.Clauses(ignore).Create(&skills).Error; err != nil {
		return err
	}

	if err := gdb.Clauses(ignore).Create(&model.Experience{UserID: userID}).Error; err != nil {
		return err
	}

	if err := gdb.Clauses(ignore).Create(&model.Cooldowns{UserID: userID}).Error; err != nil {
		return err
	}

	hud := model.Hud{
		UserID:    userID,
		Healthbar: string(model.ParseHealthbarMode(game.DefaultHealthbar, model.HealthbarHearts)),
	}
	return gdb.Clauses(ignore).Create(&hud).Error
}
