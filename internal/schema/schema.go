package schema

import (
	"fmt"
	"strings"
	"time"

	"mmo-system/config"
	"mmo-system/internal/model"
	"mmo-system/pkg/db"
	"mmo-system/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpgradePolicy 是否需要跑某个升级步骤由调用方的版本策略决定，
// 本包只负责执行和落盘记录
type UpgradePolicy interface {
	ShouldUpgrade(step string) bool
}

// AlwaysUpgrade 默认策略：全部交给存量记录和探测去判断
type AlwaysUpgrade struct{}

func (AlwaysUpgrade) ShouldUpgrade(string) bool { return true }

// Manager 结构管理器
// 启动时保证六张业务表和升级记录表存在，对存量库按序执行升级步骤
type Manager struct {
	pools  *db.Manager
	game   config.GameConfig
	policy UpgradePolicy
}

// NewManager 创建结构管理器
func NewManager(pools *db.Manager, game config.GameConfig, policy UpgradePolicy) *Manager {
	if policy == nil {
		policy = AlwaysUpgrade{}
	}
	return &Manager{pools: pools, game: game, policy: policy}
}

// 建表顺序固定：被外键引用的表在前
var tableModels = []interface{}{
	&model.SchemaUpgrade{},
	&model.User{},
	&model.Skills{},
	&model.Experience{},
	&model.Cooldowns{},
	&model.Hud{},
	&model.Party{},
	&model.PartyMember{},
}

// EnsureStructure 启动入口：建缺失的表、跑升级步骤、做善后清理
// 必须在任何业务读写之前完成
func (m *Manager) EnsureStructure() error {
	gdb := m.pools.Acquire(db.RoleMisc)

	// 每张表单独探测：缺哪张建哪张，全新安装直接得到当前版本的表结构，
	// 不需要重放历史升级
	for _, tm := range tableModels {
		if gdb.Migrator().HasTable(tm) {
			continue
		}
		if err := gdb.Migrator().CreateTable(tm); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}

	if err := m.runUpgrades(gdb); err != nil {
		return err
	}

	if err := m.sweepOrphans(gdb); err != nil {
		return err
	}

	if m.game.TruncateSkills && m.game.LevelCap > 0 {
		m.truncateSkills(gdb)
	}

	return nil
}

// runUpgrades 按声明顺序执行升级步骤
// 顺序有意义：后面的步骤可以假设前面步骤加过的列已经存在
func (m *Manager) runUpgrades(gdb *gorm.DB) error {
	applied, err := appliedSet(gdb)
	if err != nil {
		return err
	}

	for _, step := range Steps {
		if applied[step.Name] {
			continue
		}
		if !m.policy.ShouldUpgrade(step.Name) {
			logger.Debug("跳过升级步骤", zap.String("step", step.Name))
			continue
		}

		// 每一步先做廉价探测，探测说不需要就直接记完成
		if step.IsNeeded(gdb) {
			logger.Info("执行结构升级", zap.String("step", step.Name))
			if err := step.Apply(gdb, m.game); err != nil {
				return fmt.Errorf("升级步骤%s失败: %w", step.Name, err)
			}
		}

		if err := markApplied(gdb, step.Name); err != nil {
			return err
		}
	}

	return nil
}

// appliedSet 读出所有已落盘的升级记录
func appliedSet(gdb *gorm.DB) (map[string]bool, error) {
	var records []model.SchemaUpgrade
	if err := gdb.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("读取升级记录失败: %w", err)
	}
	applied := make(map[string]bool, len(records))
	for _, r := range records {
		applied[r.Name] = true
	}
	return applied, nil
}

// markApplied 落盘升级记录，重复写入是无害的
func markApplied(gdb *gorm.DB, name string) error {
	record := model.SchemaUpgrade{Name: name, AppliedAt: time.Now().Unix()}
	return gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&record).Error
}

// sweepOrphans 清理没有对应账号行的孤儿子行
func (m *Manager) sweepOrphans(gdb *gorm.DB) error {
	users := model.User{}.TableName()
	for _, table := range []string{
		model.Experience{}.TableName(),
		model.Hud{}.TableName(),
		model.Cooldowns{}.TableName(),
		model.Skills{}.TableName(),
	} {
		sql := fmt.Sprintf(
			"DELETE FROM %s WHERE NOT EXISTS (SELECT 1 FROM %s u WHERE %s.user_id = u.id)",
			table, users, table,
		)
		if err := gdb.Exec(sql).Error; err != nil {
			return fmt.Errorf("清理孤儿行失败: %w", err)
		}
	}
	return nil
}

// truncateSkills 把超过等级上限的技能截断到上限
// 截完重算 total，综合榜和零战力清理都依赖它是各技能之和
func (m *Manager) truncateSkills(gdb *gorm.DB) {
	columns := make([]string, 0, len(model.PrimarySkills))
	for _, skill := range model.PrimarySkills {
		column := string(skill)
		columns = append(columns, column)
		err := gdb.Model(&model.Skills{}).
			Where(column+" > ?", m.game.LevelCap).
			Update(column, m.game.LevelCap).Error
		if err != nil {
			logger.Error("截断技能等级失败",
				zap.String("skill", column),
				zap.Error(err),
			)
		}
	}

	recompute := fmt.Sprintf("UPDATE %s SET total = %s",
		model.Skills{}.TableName(), strings.Join(columns, "+"))
	if err := gdb.Exec(recompute).Error; err != nil {
		logger.Error("重算技能总和失败", zap.Error(err))
	}
}
