package service

import (
	"errors"
	"path/filepath"
	"testing"

	"mmo-system/config"
	"mmo-system/internal/repository"
	"mmo-system/internal/schema"
	"mmo-system/pkg/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestPartyService(t *testing.T) *PartyService {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	game := config.GameConfig{DefaultHealthbar: "HEARTS"}
	pools := db.NewManagerFromDB(gdb)
	if err := schema.NewManager(pools, game, nil).EnsureStructure(); err != nil {
		t.Fatalf("初始化表结构失败: %v", err)
	}

	identity := repository.NewIdentityRepository(pools, game)
	return NewPartyService(repository.NewPartyRepository(pools, identity))
}

func TestCreatePartyAddsLeader(t *testing.T) {
	svc := newTestPartyService(t)

	party, err := svc.CreateParty("Raiders", "Captain", "uuid-cap", "")
	if err != nil {
		t.Fatalf("建队失败: %v", err)
	}
	if party.LeaderID == 0 {
		t.Fatal("队长应被写入")
	}

	got, err := svc.GetParty("Raiders")
	if err != nil {
		t.Fatalf("查队伍失败: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].Name != "Captain" {
		t.Fatalf("队长应自动入队: %v", got.Members)
	}
}

func TestJoinPartyRules(t *testing.T) {
	svc := newTestPartyService(t)

	if _, err := svc.CreateParty("Secret", "Keeper", "uuid-k", "open-sesame"); err != nil {
		t.Fatalf("建队失败: %v", err)
	}

	err := svc.JoinParty("Secret", "Guesser", "uuid-g", "wrong")
	if !errors.Is(err, repository.ErrPasswordMismatch) {
		t.Fatalf("期望 ErrPasswordMismatch，得到 %v", err)
	}
	if err := svc.JoinParty("Secret", "Friend", "uuid-f", "open-sesame"); err != nil {
		t.Fatalf("正确口令应入队: %v", err)
	}

	// 锁定的队伍口令对了也不让进
	party, err := svc.GetParty("Secret")
	if err != nil {
		t.Fatalf("查队伍失败: %v", err)
	}
	party.Locked = true
	if err := svc.SaveParty(party); err != nil {
		t.Fatalf("写回失败: %v", err)
	}
	if err := svc.JoinParty("Secret", "Late", "uuid-l", "open-sesame"); err == nil {
		t.Fatal("锁定队伍不应接受新成员")
	}
}

func TestFormAllianceWithSelf(t *testing.T) {
	svc := newTestPartyService(t)

	if _, err := svc.CreateParty("Lonely", "Solo", "uuid-s", ""); err != nil {
		t.Fatalf("建队失败: %v", err)
	}
	if err := svc.FormAlliance("Lonely", "Lonely"); err == nil {
		t.Fatal("队伍不应能和自己结盟")
	}
}
