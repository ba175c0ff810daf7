package model

// Skill 技能枚举
// 常量值同时就是数据库列名，读写两侧的列顺序都以 PrimarySkills 为准，
// 新增技能时只允许追加到末尾
type Skill string

const (
	SkillTaming      Skill = "taming"
	SkillMining      Skill = "mining"
	SkillRepair      Skill = "repair"
	SkillWoodcutting Skill = "woodcutting"
	SkillUnarmed     Skill = "unarmed"
	SkillHerbalism   Skill = "herbalism"
	SkillExcavation  Skill = "excavation"
	SkillArchery     Skill = "archery"
	SkillSwords      Skill = "swords"
	SkillAxes        Skill = "axes"
	SkillAcrobatics  Skill = "acrobatics"
	SkillFishing     Skill = "fishing"
	SkillAlchemy     Skill = "alchemy"

	// 子技能：没有独立的等级列，也没有独立排行榜
	SkillSmelting Skill = "smelting"
	SkillSalvage  Skill = "salvage"
)

// PrimarySkills 主技能的规范顺序（列顺序、total 汇总均以此为准）
var PrimarySkills = []Skill{
	SkillTaming,
	SkillMining,
	SkillRepair,
	SkillWoodcutting,
	SkillUnarmed,
	SkillHerbalism,
	SkillExcavation,
	SkillArchery,
	SkillSwords,
	SkillAxes,
	SkillAcrobatics,
	SkillFishing,
	SkillAlchemy,
}

// ChildSkills 子技能列表
var ChildSkills = []Skill{SkillSmelting, SkillSalvage}

// IsChild 判断是否为子技能
func (s Skill) IsChild() bool {
	for _, child := range ChildSkills {
		if s == child {
			return true
		}
	}
	return false
}

// ParseSkill 按名称解析技能，未知名称返回 false
func ParseSkill(name string) (Skill, bool) {
	for _, s := range PrimarySkills {
		if string(s) == name {
			return s, true
		}
	}
	for _, s := range ChildSkills {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}

// Ability 限时技能枚举，常量值同时就是 cooldowns 表的列名
type Ability string

const (
	AbilitySuperBreaker     Ability = "super_breaker"
	AbilityTreeFeller       Ability = "tree_feller"
	AbilityBerserk          Ability = "berserk"
	AbilityGreenTerra       Ability = "green_terra"
	AbilityGigaDrillBreaker Ability = "giga_drill_breaker"
	AbilitySerratedStrikes  Ability = "serrated_strikes"
	AbilitySkullSplitter    Ability = "skull_splitter"
	AbilityBlastMining      Ability = "blast_mining"
)

// Abilities 技能冷却列的规范顺序
var Abilities = []Ability{
	AbilitySuperBreaker,
	AbilityTreeFeller,
	AbilityBerserk,
	AbilityGreenTerra,
	AbilityGigaDrillBreaker,
	AbilitySerratedStrikes,
	AbilitySkullSplitter,
	AbilityBlastMining,
}

// ParseAbility 按名称解析限时技能，未知名称返回 false
func ParseAbility(name string) (Ability, bool) {
	for _, a := range Abilities {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

// HealthbarMode 血条显示模式枚举
type HealthbarMode string

const (
	HealthbarHearts   HealthbarMode = "HEARTS"
	HealthbarBar      HealthbarMode = "BAR"
	HealthbarDisabled HealthbarMode = "DISABLED"
)

// ParseHealthbarMode 解析血条模式，未知值回退到 fallback
func ParseHealthbarMode(name string, fallback HealthbarMode) HealthbarMode {
	switch HealthbarMode(name) {
	case HealthbarHearts, HealthbarBar, HealthbarDisabled:
		return HealthbarMode(name)
	default:
		return fallback
	}
}
