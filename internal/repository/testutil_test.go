package repository

import (
	"path/filepath"
	"testing"
	"time"

	"mmo-system/config"
	"mmo-system/internal/schema"
	"mmo-system/pkg/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		StartingLevel:    0,
		DefaultHealthbar: "HEARTS",
		PurgeRetention:   90 * 24 * time.Hour,
	}
}

// openTestDB 建一个临时sqlite库并跑完结构检查
func openTestDB(t *testing.T) *db.Manager {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	pools := db.NewManagerFromDB(gdb)
	if err := schema.NewManager(pools, testGameConfig(), nil).EnsureStructure(); err != nil {
		t.Fatalf("初始化表结构失败: %v", err)
	}
	return pools
}

func newTestIdentity(pools *db.Manager) *IdentityRepository {
	return NewIdentityRepository(pools, testGameConfig())
}
