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
)

// bulkMu 批量维护操作的全局互斥锁
// 清理任务和外部标识回填都会整批扫账号表，不允许并发交错
var bulkMu sync.Mutex

// MaintenanceRepository 后台维护任务：清理和单账号删除
type MaintenanceRepository struct {
	pools    *db.Manager
	game     config.GameConfig
	identity *IdentityRepository
}

// NewMaintenanceRepository 创建MaintenanceRepository实例
func NewMaintenanceRepository(pools *db.Manager, game config.GameConfig, identity *IdentityRepository) *MaintenanceRepository {
	return &MaintenanceRepository{pools: pools, game: game, identity: identity}
}

// PurgePowerless 清理综合等级为 0 的账号，返回清掉的数量
func (r *MaintenanceRepository) PurgePowerless() (int, error) {
	bulkMu.Lock()
	defer bulkMu.Unlock()

	gdb := r.pools.Acquire(db.RoleMisc)
	var ids []uint
	err := gdb.Model(&model.Skills{}).
		Where("total = ?", 0).
		Pluck("user_id", &ids).Error
	if err != nil {
		return 0, err
	}

	if err := r.deleteUsers(gdb, ids); err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		logger.Info("清理零等级账号", zap.Int("count", len(ids)))
	}
	return len(ids), nil
}

// PurgeStale 清理超过保留期没登录过的账号，返回清掉的数量
func (r *MaintenanceRepository) PurgeStale() (int, error) {
	if r.game.PurgeRetention <= 0 {
		return 0, nil
	}

	bulkMu.Lock()
	defer bulkMu.Unlock()

	cutoff := time.Now().Add(-r.game.PurgeRetention).Unix()
	gdb := r.pools.Acquire(db.RoleMisc)
	var ids []uint
	err := gdb.Model(&model.User{}).
		Where("last_login < ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	if err := r.deleteUsers(gdb, ids); err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		logger.Info("清理长期不活跃账号", zap.Int("count", len(ids)))
	}
	return len(ids), nil
}

// RemoveUser 彻底删除单个账号和它的全部数据
func (r *MaintenanceRepository) RemoveUser(name string) error {
	gdb := r.pools.Acquire(db.RoleMisc)

	var user model.User
	err := gdb.Where("name = ?", name).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if err := r.deleteUsers(gdb, []uint{user.ID}); err != nil {
		return err
	}
	if user.ExternalID != nil {
		r.identity.Invalidate(*user.ExternalID)
	}
	return nil
}

// ResetHudSettings 把全部账号的血条模式重置成配置默认值
func (r *MaintenanceRepository) ResetHudSettings() error {
	mode := model.ParseHealthbarMode(r.game.DefaultHealthbar, model.HealthbarHearts)
	return r.pools.Acquire(db.RoleMisc).Model(&model.Hud{}).
		Where("1 = 1").
		Update("healthbar", string(mode)).Error
}

// deleteUsers 删账号先删子表行再删账号行，顺序不能反：
// 反过来中途失败会留下清理任务扫不到的孤儿行
func (r *MaintenanceRepository) deleteUsers(gdb *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	for _, target := range []interface{}{
		&model.Experience{},
		&model.Hud{},
		&model.Cooldowns{},
		&model.Skills{},
		&model.PartyMember{},
	} {
		if err := gdb.Where("user_id IN ?", ids).Delete(target).Error; err != nil {
			return err
		}
	}
	if err := gdb.Delete(&model.User{}, ids).Error; err != nil {
		return err
	}

	// 批量删除不知道具体删了哪些账号，整个缓存一起失效
	r.identity.InvalidateAll()
	return nil
}
