package model

// User 玩家账号
// 内部 id 稳定且不复用；display name 可变且不唯一；
// external_id 是身份提供方签发的稳定标识，旧账号行可能为空，
// 非空时由数据库唯一约束兜底。
// Retired 是墓碑标记：改名撞车时把旧行标记退役而不是删除，
// 历史数据仍可按 id 查询，清理任务也能统计到
type User struct {
	ID         uint    `gorm:"primaryKey"`
	Name       string  `gorm:"type:varchar(40);not null;index:idx_name"`
	ExternalID *string `gorm:"type:varchar(36);uniqueIndex:uniq_external_id"`
	LastLogin  int64   `gorm:"not null;default:0"`
	Retired    bool    `gorm:"not null;default:false"`
}

// Skills 每个账号一行，每个主技能一个整数等级列，
// total 是所有主技能等级之和（排行榜聚合用，带索引）
type Skills struct {
	UserID      uint `gorm:"primaryKey"`
	Taming      int  `gorm:"not null;default:0;index:idx_taming"`
	Mining      int  `gorm:"not null;default:0;index:idx_mining"`
	Repair      int  `gorm:"not null;default:0;index:idx_repair"`
	Woodcutting int  `gorm:"not null;default:0;index:idx_woodcutting"`
	Unarmed     int  `gorm:"not null;default:0;index:idx_unarmed"`
	Herbalism   int  `gorm:"not null;default:0;index:idx_herbalism"`
	Excavation  int  `gorm:"not null;default:0;index:idx_excavation"`
	Archery     int  `gorm:"not null;default:0;index:idx_archery"`
	Swords      int  `gorm:"not null;default:0;index:idx_swords"`
	Axes        int  `gorm:"not null;default:0;index:idx_axes"`
	Acrobatics  int  `gorm:"not null;default:0;index:idx_acrobatics"`
	Fishing     int  `gorm:"not null;default:0;index:idx_fishing"`
	Alchemy     int  `gorm:"not null;default:0;index:idx_alchemy"`
	Total       int  `gorm:"not null;default:0;index:idx_total"`
}

// Levels 按规范顺序导出技能等级
func (s *Skills) Levels() map[Skill]int {
	return map[Skill]int{
		SkillTaming:      s.Taming,
		SkillMining:      s.Mining,
		SkillRepair:      s.Repair,
		SkillWoodcutting: s.Woodcutting,
		SkillUnarmed:     s.Unarmed,
		SkillHerbalism:   s.Herbalism,
		SkillExcavation:  s.Excavation,
		SkillArchery:     s.Archery,
		SkillSwords:      s.Swords,
		SkillAxes:        s.Axes,
		SkillAcrobatics:  s.Acrobatics,
		SkillFishing:     s.Fishing,
		SkillAlchemy:     s.Alchemy,
	}
}

// SetLevels 按规范顺序写入技能等级并重算 total
func (s *Skills) SetLevels(levels map[Skill]int) {
	s.Taming = levels[SkillTaming]
	s.Mining = levels[SkillMining]
	s.Repair = levels[SkillRepair]
	s.Woodcutting = levels[SkillWoodcutting]
	s.Unarmed = levels[SkillUnarmed]
	s.Herbalism = levels[SkillHerbalism]
	s.Excavation = levels[SkillExcavation]
	s.Archery = levels[SkillArchery]
	s.Swords = levels[SkillSwords]
	s.Axes = levels[SkillAxes]
	s.Acrobatics = levels[SkillAcrobatics]
	s.Fishing = levels[SkillFishing]
	s.Alchemy = levels[SkillAlchemy]
	s.Total = 0
	for _, skill := range PrimarySkills {
		s.Total += levels[skill]
	}
}

// Experience 每个账号一行，每个主技能一个浮点经验进度列
type Experience struct {
	UserID      uint    `gorm:"primaryKey"`
	Taming      float64 `gorm:"not null;default:0"`
	Mining      float64 `gorm:"not null;default:0"`
	Repair      float64 `gorm:"not null;default:0"`
	Woodcutting float64 `gorm:"not null;default:0"`
	Unarmed     float64 `gorm:"not null;default:0"`
	Herbalism   float64 `gorm:"not null;default:0"`
	Excavation  float64 `gorm:"not null;default:0"`
	Archery     float64 `gorm:"not null;default:0"`
	Swords      float64 `gorm:"not null;default:0"`
	Axes        float64 `gorm:"not null;default:0"`
	Acrobatics  float64 `gorm:"not null;default:0"`
	Fishing     float64 `gorm:"not null;default:0"`
	Alchemy     float64 `gorm:"not null;default:0"`
}

// Points 按规范顺序导出经验进度
func (e *Experience) Points() map[Skill]float64 {
	return map[Skill]float64{
		SkillTaming:      e.Taming,
		SkillMining:      e.Mining,
		SkillRepair:      e.Repair,
		SkillWoodcutting: e.Woodcutting,
		SkillUnarmed:     e.Unarmed,
		SkillHerbalism:   e.Herbalism,
		SkillExcavation:  e.Excavation,
		SkillArchery:     e.Archery,
		SkillSwords:      e.Swords,
		SkillAxes:        e.Axes,
		SkillAcrobatics:  e.Acrobatics,
		SkillFishing:     e.Fishing,
		SkillAlchemy:     e.Alchemy,
	}
}

// SetPoints 按规范顺序写入经验进度
func (e *Experience) SetPoints(points map[Skill]float64) {
	e.Taming = points[SkillTaming]
	e.Mining = points[SkillMining]
	e.Repair = points[SkillRepair]
	e.Woodcutting = points[SkillWoodcutting]
	e.Unarmed = points[SkillUnarmed]
	e.Herbalism = points[SkillHerbalism]
	e.Excavation = points[SkillExcavation]
	e.Archery = points[SkillArchery]
	e.Swords = points[SkillSwords]
	e.Axes = points[SkillAxes]
	e.Acrobatics = points[SkillAcrobatics]
	e.Fishing = points[SkillFishing]
	e.Alchemy = points[SkillAlchemy]
}

// Cooldowns 每个账号一行，每个限时技能一个冷却截止时间戳列，
// recall 是独立于技能之外的唯一计时器
type Cooldowns struct {
	UserID           uint  `gorm:"primaryKey"`
	SuperBreaker     int64 `gorm:"not null;default:0"`
	TreeFeller       int64 `gorm:"not null;default:0"`
	Berserk          int64 `gorm:"not null;default:0"`
	GreenTerra       int64 `gorm:"not null;default:0"`
	GigaDrillBreaker int64 `gorm:"not null;default:0"`
	SerratedStrikes  int64 `gorm:"not null;default:0"`
	SkullSplitter    int64 `gorm:"not null;default:0"`
	BlastMining      int64 `gorm:"not null;default:0"`
	Recall           int64 `gorm:"not null;default:0"`
}

// Timers 按规范顺序导出技能冷却
func (c *Cooldowns) Timers() map[Ability]int64 {
	return map[Ability]int64{
		AbilitySuperBreaker:     c.SuperBreaker,
		AbilityTreeFeller:       c.TreeFeller,
		AbilityBerserk:          c.Berserk,
		AbilityGreenTerra:       c.GreenTerra,
		AbilityGigaDrillBreaker: c.GigaDrillBreaker,
		AbilitySerratedStrikes:  c.SerratedStrikes,
		AbilitySkullSplitter:    c.SkullSplitter,
		AbilityBlastMining:      c.BlastMining,
	}
}

// SetTimers 按规范顺序写入技能冷却
func (c *Cooldowns) SetTimers(timers map[Ability]int64) {
	c.SuperBreaker = timers[AbilitySuperBreaker]
	c.TreeFeller = timers[AbilityTreeFeller]
	c.Berserk = timers[AbilityBerserk]
	c.GreenTerra = timers[AbilityGreenTerra]
	c.GigaDrillBreaker = timers[AbilityGigaDrillBreaker]
	c.SerratedStrikes = timers[AbilitySerratedStrikes]
	c.SkullSplitter = timers[AbilitySkullSplitter]
	c.BlastMining = timers[AbilityBlastMining]
}

// Hud 每个账号一行的界面偏好
type Hud struct {
	UserID    uint   `gorm:"primaryKey"`
	Healthbar string `gorm:"type:varchar(50);not null;default:'HEARTS'"`
	TipsShown int    `gorm:"not null;default:0"`
}

// SchemaUpgrade 已应用的结构升级记录，进程外持久化，
// 重启后据此跳过已完成的升级检查
type SchemaUpgrade struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(64);not null;uniqueIndex:uniq_upgrade_name"`
	AppliedAt int64  `gorm:"not null;default:0"`
}
