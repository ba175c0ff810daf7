package repository

import (
	"errors"
	"testing"

	"mmo-system/internal/model"
	"mmo-system/pkg/db"
)

func newTestPartyRepo(t *testing.T) (*PartyRepository, *IdentityRepository, *db.Manager) {
	t.Helper()
	pools := openTestDB(t)
	identity := newTestIdentity(pools)
	return NewPartyRepository(pools, identity), identity, pools
}

func mustCreateParty(t *testing.T, repo *PartyRepository, name, password string) *model.Party {
	t.Helper()
	party := &model.Party{
		Name:          name,
		XPShareMode:   string(model.ShareNone),
		ItemShareMode: string(model.ShareNone),
	}
	if err := repo.Create(party, password); err != nil {
		t.Fatalf("建队%s失败: %v", name, err)
	}
	return party
}

func TestCreatePartyDuplicate(t *testing.T) {
	repo, _, _ := newTestPartyRepo(t)

	mustCreateParty(t, repo, "Alpha", "")
	err := repo.Create(&model.Party{Name: "Alpha"}, "")
	if !errors.Is(err, ErrPartyExists) {
		t.Fatalf("期望 ErrPartyExists，得到 %v", err)
	}
}

func TestPartyPassword(t *testing.T) {
	repo, _, _ := newTestPartyRepo(t)

	mustCreateParty(t, repo, "Locked", "hunter2")
	mustCreateParty(t, repo, "Open", "")

	if err := repo.CheckPassword("Locked", "hunter2"); err != nil {
		t.Fatalf("正确口令应放行: %v", err)
	}
	if err := repo.CheckPassword("Locked", "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("期望 ErrPasswordMismatch，得到 %v", err)
	}
	if err := repo.CheckPassword("Open", "anything"); err != nil {
		t.Fatalf("没设口令的队伍应放行: %v", err)
	}

	// 明文不允许落库
	party, err := repo.GetByName("Locked")
	if err != nil {
		t.Fatalf("查队伍失败: %v", err)
	}
	if party.PasswordHash == nil || *party.PasswordHash == "hunter2" {
		t.Fatal("口令必须以哈希存储")
	}
}

func TestAllianceReciprocity(t *testing.T) {
	repo, _, _ := newTestPartyRepo(t)

	a := mustCreateParty(t, repo, "TeamA", "")
	b := mustCreateParty(t, repo, "TeamB", "")
	c := mustCreateParty(t, repo, "TeamC", "")

	if err := repo.SetAllies("TeamA", "TeamB"); err != nil {
		t.Fatalf("结盟失败: %v", err)
	}
	gotA, _ := repo.GetByName("TeamA")
	gotB, _ := repo.GetByName("TeamB")
	if gotA.AllyID == nil || *gotA.AllyID != b.ID {
		t.Fatal("A侧盟约未写入")
	}
	if gotB.AllyID == nil || *gotB.AllyID != a.ID {
		t.Fatal("B侧盟约未写入")
	}

	// A转投C时A和B的旧盟约两边都要清掉
	if err := repo.SetAllies("TeamA", "TeamC"); err != nil {
		t.Fatalf("换盟失败: %v", err)
	}
	gotA, _ = repo.GetByName("TeamA")
	gotB, _ = repo.GetByName("TeamB")
	gotC, _ := repo.GetByName("TeamC")
	if gotB.AllyID != nil {
		t.Fatal("B的旧盟约应被清空")
	}
	if gotA.AllyID == nil || *gotA.AllyID != c.ID || gotC.AllyID == nil || *gotC.AllyID != a.ID {
		t.Fatal("A和C的新盟约应双向写入")
	}

	if err := repo.DisbandAlliance("TeamA"); err != nil {
		t.Fatalf("解盟失败: %v", err)
	}
	gotA, _ = repo.GetByName("TeamA")
	gotC, _ = repo.GetByName("TeamC")
	if gotA.AllyID != nil || gotC.AllyID != nil {
		t.Fatal("解盟应两边同时清空")
	}
}

func TestDeletePartySeversAllyAndMembers(t *testing.T) {
	repo, _, pools := newTestPartyRepo(t)

	mustCreateParty(t, repo, "Doomed", "")
	survivor := mustCreateParty(t, repo, "Survivor", "")
	if err := repo.SetAllies("Doomed", "Survivor"); err != nil {
		t.Fatalf("结盟失败: %v", err)
	}
	if err := repo.AddMember("Doomed", "Member1", "uuid-m1"); err != nil {
		t.Fatalf("入队失败: %v", err)
	}

	if err := repo.Delete("Doomed"); err != nil {
		t.Fatalf("解散失败: %v", err)
	}

	got, err := repo.GetByName("Survivor")
	if err != nil {
		t.Fatalf("查盟友失败: %v", err)
	}
	if got.AllyID != nil {
		t.Fatal("解散后盟友侧引用应被清空")
	}
	_ = survivor

	// 成员关系由外键级联清掉
	var count int64
	if err := pools.Acquire(db.RoleMisc).Model(&model.PartyMember{}).Count(&count).Error; err != nil {
		t.Fatalf("查成员失败: %v", err)
	}
	if count != 0 {
		t.Fatalf("残留成员关系 %d 条", count)
	}
}

func TestMembershipMoves(t *testing.T) {
	repo, _, _ := newTestPartyRepo(t)

	mustCreateParty(t, repo, "First", "")
	second := mustCreateParty(t, repo, "Second", "")

	if err := repo.AddMember("First", "Walker", "uuid-w"); err != nil {
		t.Fatalf("入队失败: %v", err)
	}
	// 换队伍直接改指向，一个账号同时只在一支队伍
	if err := repo.AddMember("Second", "Walker", "uuid-w"); err != nil {
		t.Fatalf("换队失败: %v", err)
	}

	parties, err := repo.LoadParties()
	if err != nil {
		t.Fatalf("读队伍失败: %v", err)
	}
	for _, party := range parties {
		switch party.ID {
		case second.ID:
			if len(party.Members) != 1 || party.Members[0].Name != "Walker" {
				t.Fatalf("Second成员错误: %v", party.Members)
			}
		default:
			if len(party.Members) != 0 {
				t.Fatalf("First不应再有成员: %v", party.Members)
			}
		}
	}

	if err := repo.RemoveMember("Walker"); err != nil {
		t.Fatalf("退队失败: %v", err)
	}
	parties, _ = repo.LoadParties()
	for _, party := range parties {
		if len(party.Members) != 0 {
			t.Fatal("退队后不应残留成员关系")
		}
	}
}

func TestLoadPartiesFillsAllyName(t *testing.T) {
	repo, _, _ := newTestPartyRepo(t)

	mustCreateParty(t, repo, "East", "")
	mustCreateParty(t, repo, "West", "")
	if err := repo.SetAllies("East", "West"); err != nil {
		t.Fatalf("结盟失败: %v", err)
	}

	parties, err := repo.LoadParties()
	if err != nil {
		t.Fatalf("读队伍失败: %v", err)
	}
	byName := make(map[string]*model.Party)
	for _, party := range parties {
		byName[party.Name] = party
	}
	if byName["East"].AllyName != "West" || byName["West"].AllyName != "East" {
		t.Fatalf("盟友名字未填充: %s / %s", byName["East"].AllyName, byName["West"].AllyName)
	}
}

func TestSetLeaderAndSave(t *testing.T) {
	repo, identity, _ := newTestPartyRepo(t)

	party := mustCreateParty(t, repo, "Guild", "")
	leaderID, err := identity.Create("Boss", "uuid-boss")
	if err != nil {
		t.Fatalf("建号失败: %v", err)
	}

	if err := repo.SetLeader("Guild", "Boss"); err != nil {
		t.Fatalf("换队长失败: %v", err)
	}

	party.Level = 5
	party.XP = 250.5
	party.Locked = true
	party.XPShareMode = string(model.ShareEqual)
	party.ShareMining = true
	party.LeaderID = leaderID
	if err := repo.Save(party); err != nil {
		t.Fatalf("写回失败: %v", err)
	}

	got, err := repo.GetByName("Guild")
	if err != nil {
		t.Fatalf("查队伍失败: %v", err)
	}
	if got.LeaderID != leaderID || got.Level != 5 || got.XP != 250.5 || !got.Locked {
		t.Fatalf("写回结果错误: %+v", got)
	}
	if got.XPShareMode != string(model.ShareEqual) || !got.ShareMining {
		t.Fatalf("分享设置未写回: %+v", got)
	}
}
