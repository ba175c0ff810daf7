package model

// ShareMode 队伍分享模式（经验和物品两套各自独立）
type ShareMode string

const (
	ShareNone   ShareMode = "NONE"
	ShareEqual  ShareMode = "EQUAL"
	ShareRandom ShareMode = "RANDOM"
)

// ParseShareMode 解析分享模式，未知值回退到 NONE
func ParseShareMode(name string) ShareMode {
	switch ShareMode(name) {
	case ShareNone, ShareEqual, ShareRandom:
		return ShareMode(name)
	default:
		return ShareNone
	}
}

// Party 队伍
// AllyID 是对另一支队伍的对称引用：A 结盟 B 时两边同时写入，
// 解除时两边同时清空。PasswordHash 只存 bcrypt 哈希，不存明文
type Party struct {
	ID               uint    `gorm:"primaryKey"`
	Name             string  `gorm:"type:varchar(64);not null;uniqueIndex:uniq_party_name"`
	LeaderID         uint    `gorm:"not null"`
	PasswordHash     *string `gorm:"type:varchar(255)"`
	Locked           bool    `gorm:"not null;default:false"`
	Level            int     `gorm:"not null;default:0"`
	XP               float64 `gorm:"not null;default:0"`
	AllyID           *uint   `gorm:"index:idx_ally"`
	XPShareMode      string  `gorm:"type:varchar(16);not null;default:'NONE'"`
	ItemShareMode    string  `gorm:"type:varchar(16);not null;default:'NONE'"`
	ShareLoot        bool    `gorm:"not null;default:false"`
	ShareMining      bool    `gorm:"not null;default:false"`
	ShareHerbalism   bool    `gorm:"not null;default:false"`
	ShareWoodcutting bool    `gorm:"not null;default:false"`

	// 以下字段不落库，读取时由仓储层填充
	Members  []PartyMemberRef `gorm:"-"`
	AllyName string           `gorm:"-"`
}

// PartyMemberRef 队伍成员的身份引用（读取用）
type PartyMemberRef struct {
	Name       string `json:"name"`
	ExternalID string `json:"external_id,omitempty"`
}

// PartyMember 队伍成员关系表
// 一个账号同一时间只属于一支队伍，所以 user_id 做主键；
// 账号或队伍删除时由外键级联清掉成员行
type PartyMember struct {
	UserID  uint `gorm:"primaryKey"`
	PartyID uint `gorm:"not null;index:idx_party_id"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
	Party Party `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
}
