package schema

import (
	"fmt"
	"strings"

	"mmo-system/config"
	"mmo-system/internal/model"

	"gorm.io/gorm"
)

// Step 一个升级步骤
// IsNeeded 做廉价的结构探测，Apply 才真正改表
type Step struct {
	Name     string
	IsNeeded func(gdb *gorm.DB) bool
	Apply    func(gdb *gorm.DB, game config.GameConfig) error
}

// Steps 全量升级步骤，按历史版本顺序排列，只追加不重排
var Steps = []Step{
	{
		Name: "add_alchemy",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasColumn(&model.Skills{}, "alchemy")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			if err := gdb.Migrator().AddColumn(&model.Skills{}, "Alchemy"); err != nil {
				return err
			}
			// 两张表的升级进度可能不同步
			if gdb.Migrator().HasColumn(&model.Experience{}, "alchemy") {
				return nil
			}
			return gdb.Migrator().AddColumn(&model.Experience{}, "Alchemy")
		},
	},
	{
		Name: "add_blast_mining_cooldown",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasColumn(&model.Cooldowns{}, "blast_mining")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			return gdb.Migrator().AddColumn(&model.Cooldowns{}, "BlastMining")
		},
	},
	{
		Name: "add_recall_cooldown",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasColumn(&model.Cooldowns{}, "recall")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			return gdb.Migrator().AddColumn(&model.Cooldowns{}, "Recall")
		},
	},
	{
		Name: "add_healthbar_mode",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasColumn(&model.Hud{}, "healthbar")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			return gdb.Migrator().AddColumn(&model.Hud{}, "Healthbar")
		},
	},
	{
		Name: "add_tips_shown",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasColumn(&model.Hud{}, "tips_shown")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			return gdb.Migrator().AddColumn(&model.Hud{}, "TipsShown")
		},
	},
	{
		// 历史版本把队伍名直接存在账号表里，现在队伍成员关系单独成表
		Name: "drop_party_name_column",
		IsNeeded: func(gdb *gorm.DB) bool {
			return gdb.Migrator().HasColumn(&model.User{}, "party")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			return gdb.Migrator().DropColumn(&model.User{}, "party")
		},
	},
	{
		Name: "drop_legacy_hud_type",
		IsNeeded: func(gdb *gorm.DB) bool {
			return gdb.Migrator().HasColumn(&model.Hud{}, "hudtype")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			return gdb.Migrator().DropColumn(&model.Hud{}, "hudtype")
		},
	},
	{
		Name: "add_external_ids",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasColumn(&model.User{}, "external_id")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			if err := gdb.Migrator().AddColumn(&model.User{}, "ExternalID"); err != nil {
				return err
			}
			return gdb.Migrator().CreateIndex(&model.User{}, "ExternalID")
		},
	},
	{
		// 名字可以被继承，外部标识才是唯一键，旧库的名字唯一索引要换成普通索引
		Name: "drop_name_uniqueness",
		IsNeeded: func(gdb *gorm.DB) bool {
			return gdb.Migrator().HasIndex(&model.User{}, "uniq_name")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			if err := gdb.Migrator().DropIndex(&model.User{}, "uniq_name"); err != nil {
				return err
			}
			if gdb.Migrator().HasIndex(&model.User{}, "idx_name") {
				return nil
			}
			return gdb.Migrator().CreateIndex(&model.User{}, "Name")
		},
	},
	{
		Name: "add_skill_indexes",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasIndex(&model.Skills{}, "idx_mining")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			for _, skill := range model.PrimarySkills {
				name := "idx_" + string(skill)
				if gdb.Migrator().HasIndex(&model.Skills{}, name) {
					continue
				}
				if err := gdb.Migrator().CreateIndex(&model.Skills{}, name); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		// 加列、回填、建索引必须一起生效，这一步跑在真正的事务里
		Name: "add_skill_total",
		IsNeeded: func(gdb *gorm.DB) bool {
			return !gdb.Migrator().HasColumn(&model.Skills{}, "total")
		},
		Apply: func(gdb *gorm.DB, game config.GameConfig) error {
			return gdb.Transaction(func(tx *gorm.DB) error {
				if err := tx.Migrator().AddColumn(&model.Skills{}, "Total"); err != nil {
					return err
				}
				columns := make([]string, 0, len(model.PrimarySkills))
				for _, skill := range model.PrimarySkills {
					columns = append(columns, string(skill))
				}
				backfill := fmt.Sprintf("UPDATE %s SET total = %s",
					model.Skills{}.TableName(), strings.Join(columns, "+"))
				if err := tx.Exec(backfill).Error; err != nil {
					return err
				}
				return tx.Migrator().CreateIndex(&model.Skills{}, "idx_total")
			})
		},
	},
}
