package model

import "testing"

func TestParseSkill(t *testing.T) {
	if s, ok := ParseSkill("mining"); !ok || s != SkillMining {
		t.Fatalf("ParseSkill(mining) = %v %v", s, ok)
	}
	if s, ok := ParseSkill("smelting"); !ok || !s.IsChild() {
		t.Fatalf("ParseSkill(smelting) = %v %v", s, ok)
	}
	if _, ok := ParseSkill("dancing"); ok {
		t.Fatal("未知技能不应解析成功")
	}
}

func TestSetLevelsRecomputesTotal(t *testing.T) {
	var s Skills
	s.SetLevels(map[Skill]int{
		SkillMining:    10,
		SkillHerbalism: 5,
		SkillAlchemy:   1,
	})
	if s.Total != 16 {
		t.Fatalf("total = %d，期望16", s.Total)
	}
	if s.Mining != 10 || s.Herbalism != 5 || s.Alchemy != 1 || s.Taming != 0 {
		t.Fatalf("等级写入错误: %+v", s)
	}
}

func TestParseHealthbarMode(t *testing.T) {
	if got := ParseHealthbarMode("BAR", HealthbarHearts); got != HealthbarBar {
		t.Fatalf("ParseHealthbarMode(BAR) = %s", got)
	}
	if got := ParseHealthbarMode("bogus", HealthbarHearts); got != HealthbarHearts {
		t.Fatalf("未知值应回退: %s", got)
	}
}

func TestTablePrefix(t *testing.T) {
	if (User{}).TableName() != TablePrefix()+"users" {
		t.Fatalf("表名 = %s", (User{}).TableName())
	}
}
