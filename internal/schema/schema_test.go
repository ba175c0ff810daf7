package schema

import (
	"path/filepath"
	"testing"

	"mmo-system/config"
	"mmo-system/internal/model"
	"mmo-system/pkg/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) (*db.Manager, *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	return db.NewManagerFromDB(gdb), gdb
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{DefaultHealthbar: "HEARTS"}
}

func TestEnsureStructureFreshInstall(t *testing.T) {
	pools, gdb := openTestDB(t)

	mgr := NewManager(pools, testGameConfig(), nil)
	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("结构检查失败: %v", err)
	}

	for _, m := range tableModels {
		if !gdb.Migrator().HasTable(m) {
			t.Fatalf("缺表: %T", m)
		}
	}

	// 全新安装的表就是当前版本结构，所有步骤应直接记完成
	var count int64
	if err := gdb.Model(&model.SchemaUpgrade{}).Count(&count).Error; err != nil {
		t.Fatalf("查升级记录失败: %v", err)
	}
	if int(count) != len(Steps) {
		t.Fatalf("升级记录 %d 条，期望 %d", count, len(Steps))
	}
}

func TestEnsureStructureIdempotent(t *testing.T) {
	pools, gdb := openTestDB(t)
	mgr := NewManager(pools, testGameConfig(), nil)

	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("首次结构检查失败: %v", err)
	}
	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("二次结构检查失败: %v", err)
	}

	var count int64
	gdb.Model(&model.SchemaUpgrade{}).Count(&count)
	if int(count) != len(Steps) {
		t.Fatalf("重复执行后升级记录 %d 条，期望 %d", count, len(Steps))
	}
}

func TestUpgradeLegacySchema(t *testing.T) {
	pools, gdb := openTestDB(t)

	// 手工造一套历史版本的表：账号表带队伍名列，技能表缺炼金和total
	prefix := model.TablePrefix()
	legacy := []string{
		"CREATE TABLE " + prefix + "users (id INTEGER PRIMARY KEY AUTOINCREMENT, name VARCHAR(40) NOT NULL, party VARCHAR(64), last_login INTEGER NOT NULL DEFAULT 0, retired BOOLEAN NOT NULL DEFAULT 0)",
		"CREATE TABLE " + prefix + "skills (user_id INTEGER PRIMARY KEY, taming INTEGER NOT NULL DEFAULT 0, mining INTEGER NOT NULL DEFAULT 0, repair INTEGER NOT NULL DEFAULT 0, woodcutting INTEGER NOT NULL DEFAULT 0, unarmed INTEGER NOT NULL DEFAULT 0, herbalism INTEGER NOT NULL DEFAULT 0, excavation INTEGER NOT NULL DEFAULT 0, archery INTEGER NOT NULL DEFAULT 0, swords INTEGER NOT NULL DEFAULT 0, axes INTEGER NOT NULL DEFAULT 0, acrobatics INTEGER NOT NULL DEFAULT 0, fishing INTEGER NOT NULL DEFAULT 0)",
	}
	for _, stmt := range legacy {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("造历史表失败: %v", err)
		}
	}
	seed := []string{
		"INSERT INTO " + prefix + "users (name, party, last_login) VALUES ('Veteran', 'OldGuard', 1600000000)",
		"INSERT INTO " + prefix + "skills (user_id, mining, herbalism) VALUES (1, 30, 12)",
	}
	for _, stmt := range seed {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("造历史数据失败: %v", err)
		}
	}

	mgr := NewManager(pools, testGameConfig(), nil)
	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("结构升级失败: %v", err)
	}

	if !gdb.Migrator().HasColumn(&model.Skills{}, "alchemy") {
		t.Fatal("炼金列应被补上")
	}
	if !gdb.Migrator().HasColumn(&model.Skills{}, "total") {
		t.Fatal("total列应被补上")
	}
	if gdb.Migrator().HasColumn(&model.User{}, "party") {
		t.Fatal("历史队伍名列应被删掉")
	}
	if !gdb.Migrator().HasColumn(&model.User{}, "external_id") {
		t.Fatal("外部标识列应被补上")
	}

	// total回填必须等于各技能之和
	var total int
	err := gdb.Table(prefix+"skills").Select("total").Where("user_id = 1").Row().Scan(&total)
	if err != nil {
		t.Fatalf("查total失败: %v", err)
	}
	if total != 42 {
		t.Fatalf("total = %d，期望42", total)
	}

	// 升级后的表能被现有模型正常读写
	var user model.User
	if err := gdb.Where("name = ?", "Veteran").Take(&user).Error; err != nil {
		t.Fatalf("读升级后的账号行失败: %v", err)
	}
	if user.LastLogin != 1600000000 {
		t.Fatalf("存量数据受损: %+v", user)
	}
}

func TestOrphanSweep(t *testing.T) {
	pools, gdb := openTestDB(t)
	mgr := NewManager(pools, testGameConfig(), nil)
	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("结构检查失败: %v", err)
	}

	// 没有账号行的孤儿子行在下一次启动时被清掉
	if err := gdb.Create(&model.Skills{UserID: 999, Mining: 5}).Error; err != nil {
		t.Fatalf("造孤儿行失败: %v", err)
	}
	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("二次结构检查失败: %v", err)
	}

	var count int64
	gdb.Model(&model.Skills{}).Where("user_id = ?", 999).Count(&count)
	if count != 0 {
		t.Fatal("孤儿行应被清理")
	}
}

func TestTruncateSkills(t *testing.T) {
	pools, gdb := openTestDB(t)

	game := config.GameConfig{DefaultHealthbar: "HEARTS", LevelCap: 50, TruncateSkills: true}
	mgr := NewManager(pools, game, nil)
	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("结构检查失败: %v", err)
	}

	user := model.User{Name: "Overgrown"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("建号失败: %v", err)
	}
	if err := gdb.Create(&model.Skills{UserID: user.ID, Mining: 80, Taming: 20}).Error; err != nil {
		t.Fatalf("写等级失败: %v", err)
	}

	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("二次结构检查失败: %v", err)
	}

	var skills model.Skills
	if err := gdb.Where("user_id = ?", user.ID).Take(&skills).Error; err != nil {
		t.Fatalf("查等级失败: %v", err)
	}
	if skills.Mining != 50 {
		t.Fatalf("超上限等级 = %d，应被截断到50", skills.Mining)
	}
	if skills.Taming != 20 {
		t.Fatalf("上限内等级 = %d，不应被动", skills.Taming)
	}
	// 截断之后 total 必须重新等于各技能之和，综合榜读的就是它
	if skills.Total != 70 {
		t.Fatalf("技能总和 = %d，期望70", skills.Total)
	}
}

type denyPolicy struct{}

func (denyPolicy) ShouldUpgrade(string) bool { return false }

func TestUpgradePolicySkips(t *testing.T) {
	pools, gdb := openTestDB(t)

	mgr := NewManager(pools, testGameConfig(), denyPolicy{})
	if err := mgr.EnsureStructure(); err != nil {
		t.Fatalf("结构检查失败: %v", err)
	}

	// 策略说不升级的步骤既不执行也不记完成
	var count int64
	gdb.Model(&model.SchemaUpgrade{}).Count(&count)
	if count != 0 {
		t.Fatalf("升级记录 %d 条，期望0", count)
	}
}
