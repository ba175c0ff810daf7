package model

// 表名前缀，启动时由配置注入一次；所有 TableName 实现都经过这里，
// 原生 SQL 也必须用这些方法拿表名
var tablePrefix = "mmo_"

// SetTablePrefix 设置表名前缀（仅在启动时调用一次）
func SetTablePrefix(prefix string) {
	tablePrefix = prefix
}

// TablePrefix 获取当前表名前缀
func TablePrefix() string {
	return tablePrefix
}

func (User) TableName() string          { return tablePrefix + "users" }
func (Skills) TableName() string        { return tablePrefix + "skills" }
func (Experience) TableName() string    { return tablePrefix + "experience" }
func (Cooldowns) TableName() string     { return tablePrefix + "cooldowns" }
func (Hud) TableName() string           { return tablePrefix + "hud" }
func (Party) TableName() string         { return tablePrefix + "parties" }
func (PartyMember) TableName() string   { return tablePrefix + "party_members" }
func (SchemaUpgrade) TableName() string { return tablePrefix + "schema_upgrades" }
