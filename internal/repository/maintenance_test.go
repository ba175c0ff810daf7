package repository

import (
	"errors"
	"testing"
	"time"

	"mmo-system/internal/model"
	"mmo-system/pkg/db"
)

func newTestMaintenanceRepo(t *testing.T) (*MaintenanceRepository, *IdentityRepository, *db.Manager) {
	t.Helper()
	pools := openTestDB(t)
	identity := newTestIdentity(pools)
	return NewMaintenanceRepository(pools, testGameConfig(), identity), identity, pools
}

func setMiningLevel(t *testing.T, pools *db.Manager, id uint, level int) {
	t.Helper()
	err := pools.Acquire(db.RoleMisc).Model(&model.Skills{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{"mining": level, "total": level}).Error
	if err != nil {
		t.Fatalf("写等级失败: %v", err)
	}
}

func TestPurgePowerless(t *testing.T) {
	repo, identity, pools := newTestMaintenanceRepo(t)

	idleID, err := identity.Create("Idle", "uuid-idle")
	if err != nil {
		t.Fatalf("建号失败: %v", err)
	}
	activeID, err := identity.Create("Active", "uuid-active")
	if err != nil {
		t.Fatalf("建号失败: %v", err)
	}
	setMiningLevel(t, pools, activeID, 10)

	purged, err := repo.PurgePowerless()
	if err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	if purged != 1 {
		t.Fatalf("清理了 %d 个账号，期望1", purged)
	}

	gdb := pools.Acquire(db.RoleMisc)
	var count int64
	gdb.Model(&model.User{}).Where("id = ?", idleID).Count(&count)
	if count != 0 {
		t.Fatal("零等级账号应被删除")
	}
	gdb.Model(&model.User{}).Where("id = ?", activeID).Count(&count)
	if count != 1 {
		t.Fatal("有等级的账号不应被删除")
	}

	// 子表行要一起删干净
	for _, m := range []interface{}{&model.Skills{}, &model.Experience{}, &model.Cooldowns{}, &model.Hud{}} {
		gdb.Model(m).Where("user_id = ?", idleID).Count(&count)
		if count != 0 {
			t.Fatalf("残留子表行: %T", m)
		}
	}
}

func TestPurgeStale(t *testing.T) {
	repo, identity, pools := newTestMaintenanceRepo(t)

	staleID, err := identity.Create("Ancient", "uuid-ancient")
	if err != nil {
		t.Fatalf("建号失败: %v", err)
	}
	if _, err := identity.Create("Recent", "uuid-recent"); err != nil {
		t.Fatalf("建号失败: %v", err)
	}

	// 把一个账号的登录时间拨到保留期之外
	old := time.Now().Add(-testGameConfig().PurgeRetention - 24*time.Hour).Unix()
	err = pools.Acquire(db.RoleMisc).Model(&model.User{}).
		Where("id = ?", staleID).
		Update("last_login", old).Error
	if err != nil {
		t.Fatalf("改登录时间失败: %v", err)
	}

	purged, err := repo.PurgeStale()
	if err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	if purged != 1 {
		t.Fatalf("清理了 %d 个账号，期望1", purged)
	}

	var count int64
	pools.Acquire(db.RoleMisc).Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("剩余 %d 个账号，期望1", count)
	}
}

func TestRemoveUser(t *testing.T) {
	repo, identity, pools := newTestMaintenanceRepo(t)

	id, err := identity.Create("Target", "uuid-t")
	if err != nil {
		t.Fatalf("建号失败: %v", err)
	}

	if err := repo.RemoveUser("Target"); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if err := repo.RemoveUser("Target"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("期望 ErrUserNotFound，得到 %v", err)
	}

	var count int64
	pools.Acquire(db.RoleMisc).Model(&model.Skills{}).Where("user_id = ?", id).Count(&count)
	if count != 0 {
		t.Fatal("子表行应一起删除")
	}

	// 删除之后缓存也要失效
	if _, err := identity.Resolve("Target", "uuid-t"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("期望 ErrUserNotFound，得到 %v", err)
	}
}

func TestResetHudSettings(t *testing.T) {
	repo, identity, pools := newTestMaintenanceRepo(t)

	id, err := identity.Create("Viewer", "uuid-v")
	if err != nil {
		t.Fatalf("建号失败: %v", err)
	}
	gdb := pools.Acquire(db.RoleMisc)
	err = gdb.Model(&model.Hud{}).Where("user_id = ?", id).
		Update("healthbar", string(model.HealthbarDisabled)).Error
	if err != nil {
		t.Fatalf("改血条模式失败: %v", err)
	}

	if err := repo.ResetHudSettings(); err != nil {
		t.Fatalf("重置失败: %v", err)
	}

	var hud model.Hud
	if err := gdb.Where("user_id = ?", id).Take(&hud).Error; err != nil {
		t.Fatalf("查界面偏好失败: %v", err)
	}
	if hud.Healthbar != string(model.HealthbarHearts) {
		t.Fatalf("血条模式 = %s，期望HEARTS", hud.Healthbar)
	}
}
