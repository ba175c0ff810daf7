package model

// Profile 一个玩家的完整存档投影（技能等级、经验、冷却、界面偏好）
// Loaded=false 表示这不是一份有存储背书的档案：
// 读档彻底失败时返回它，调用方据此区分"新玩家"和"存储不可用"
type Profile struct {
	Name       string
	ExternalID string
	Loaded     bool

	SkillLevels      map[Skill]int
	SkillXP          map[Skill]float64
	AbilityCooldowns map[Ability]int64
	RecallCooldown   int64

	Healthbar HealthbarMode
	TipsShown int
}

// NewProfile 构造一份空档案
// loaded=false 时即为"未加载"占位档案
func NewProfile(name string, loaded bool) *Profile {
	return &Profile{
		Name:             name,
		Loaded:           loaded,
		SkillLevels:      make(map[Skill]int),
		SkillXP:          make(map[Skill]float64),
		AbilityCooldowns: make(map[Ability]int64),
		Healthbar:        HealthbarHearts,
	}
}

// SkillLevel 读取单个技能等级（子技能恒为0）
func (p *Profile) SkillLevel(skill Skill) int {
	return p.SkillLevels[skill]
}

// TotalLevel 所有主技能等级之和
func (p *Profile) TotalLevel() int {
	total := 0
	for _, skill := range PrimarySkills {
		total += p.SkillLevels[skill]
	}
	return total
}
