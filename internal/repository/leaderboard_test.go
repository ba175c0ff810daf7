package repository

import (
	"errors"
	"testing"

	"mmo-system/internal/model"
	"mmo-system/pkg/db"
)

// seedLevels 造一批带技能等级的账号
func seedLevels(t *testing.T, pools *db.Manager, identity *IdentityRepository, levels map[string]int) {
	t.Helper()
	gdb := pools.Acquire(db.RoleMisc)
	for name, level := range levels {
		id, err := identity.Create(name, "uuid-"+name)
		if err != nil {
			t.Fatalf("建号%s失败: %v", name, err)
		}
		err = gdb.Model(&model.Skills{}).
			Where("user_id = ?", id).
			Updates(map[string]interface{}{"mining": level, "total": level}).Error
		if err != nil {
			t.Fatalf("写等级失败: %v", err)
		}
	}
}

func TestLeaderboardPageOrdering(t *testing.T) {
	pools := openTestDB(t)
	identity := newTestIdentity(pools)
	repo := NewLeaderboardRepository(pools)

	seedLevels(t, pools, identity, map[string]int{
		"Delta":   40,
		"Alpha":   100,
		"Charlie": 40,
		"Bravo":   70,
		"Zero":    0,
	})

	entries, err := repo.Page(model.SkillMining, 1, 10)
	if err != nil {
		t.Fatalf("查排行榜失败: %v", err)
	}

	// 等级降序，同等级按名字字母序；0级不上榜
	want := []struct {
		rank  int
		name  string
		level int
	}{
		{1, "Alpha", 100},
		{2, "Bravo", 70},
		{3, "Charlie", 40},
		{4, "Delta", 40},
	}
	if len(entries) != len(want) {
		t.Fatalf("榜上 %d 人，期望 %d", len(entries), len(want))
	}
	for i, w := range want {
		got := entries[i]
		if got.Rank != w.rank || got.Name != w.name || got.Level != w.level {
			t.Fatalf("第%d行 = %+v，期望 %+v", i, got, w)
		}
	}
}

func TestLeaderboardPagination(t *testing.T) {
	pools := openTestDB(t)
	identity := newTestIdentity(pools)
	repo := NewLeaderboardRepository(pools)

	seedLevels(t, pools, identity, map[string]int{
		"N1": 10, "N2": 20, "N3": 30, "N4": 40, "N5": 50,
	})

	page2, err := repo.Page(model.SkillMining, 2, 2)
	if err != nil {
		t.Fatalf("查第2页失败: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("第2页 %d 行，期望2", len(page2))
	}
	if page2[0].Rank != 3 || page2[0].Name != "N3" {
		t.Fatalf("第2页首行错误: %+v", page2[0])
	}
	if page2[1].Rank != 4 || page2[1].Name != "N2" {
		t.Fatalf("第2页次行错误: %+v", page2[1])
	}
}

func TestChildSkillHasNoLeaderboard(t *testing.T) {
	pools := openTestDB(t)
	repo := NewLeaderboardRepository(pools)

	if _, err := repo.Page(model.SkillSmelting, 1, 10); !errors.Is(err, ErrNoLeaderboard) {
		t.Fatalf("期望 ErrNoLeaderboard，得到 %v", err)
	}
}

func TestRankOfTieBlocks(t *testing.T) {
	pools := openTestDB(t)
	identity := newTestIdentity(pools)
	repo := NewLeaderboardRepository(pools)

	// Mid1和Mid2并列，名次按名字字母序连续排
	seedLevels(t, pools, identity, map[string]int{
		"Top":  90,
		"Mid1": 50,
		"Mid2": 50,
		"Low":  10,
	})

	cases := map[string]int{
		"Top":  1,
		"Mid1": 2,
		"Mid2": 3,
		"Low":  4,
	}
	for name, want := range cases {
		ranks, powerRank, err := repo.RankOf(name)
		if err != nil {
			t.Fatalf("查%s名次失败: %v", name, err)
		}
		if ranks[model.SkillMining] != want {
			t.Fatalf("%s挖矿名次 = %d，期望 %d", name, ranks[model.SkillMining], want)
		}
		if powerRank != want {
			t.Fatalf("%s综合名次 = %d，期望 %d", name, powerRank, want)
		}
		// 没练过的技能不应上榜
		if ranks[model.SkillAlchemy] != 0 {
			t.Fatalf("%s炼金名次 = %d，期望0", name, ranks[model.SkillAlchemy])
		}
	}
}

func TestRankOfUnknownUser(t *testing.T) {
	pools := openTestDB(t)
	repo := NewLeaderboardRepository(pools)

	ranks, powerRank, err := repo.RankOf("Stranger")
	if err != nil {
		t.Fatalf("查名次失败: %v", err)
	}
	if powerRank != 0 {
		t.Fatalf("陌生账号综合名次 = %d，期望0", powerRank)
	}
	for skill, rank := range ranks {
		if rank != 0 {
			t.Fatalf("陌生账号%s名次 = %d，期望0", skill, rank)
		}
	}
}

func TestRetiredAccountsExcluded(t *testing.T) {
	pools := openTestDB(t)
	identity := newTestIdentity(pools)
	repo := NewLeaderboardRepository(pools)

	seedLevels(t, pools, identity, map[string]int{
		"Active":  60,
		"HasGone": 80,
	})
	err := pools.Acquire(db.RoleMisc).Model(&model.User{}).
		Where("name = ?", "HasGone").
		Update("retired", true).Error
	if err != nil {
		t.Fatalf("打退役标记失败: %v", err)
	}

	entries, err := repo.Page(model.SkillMining, 1, 10)
	if err != nil {
		t.Fatalf("查排行榜失败: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Active" || entries[0].Rank != 1 {
		t.Fatalf("退役账号不应上榜: %+v", entries)
	}
}
