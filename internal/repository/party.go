package repository

import (
	"errors"

	"mmo-system/internal/model"
	"mmo-system/pkg/db"
	"mmo-system/pkg/logger"
	"mmo-system/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartyRepository 队伍数据仓储
type PartyRepository struct {
	pools    *db.Manager
	identity *IdentityRepository
}

// NewPartyRepository 创建PartyRepository实例
func NewPartyRepository(pools *db.Manager, identity *IdentityRepository) *PartyRepository {
	return &PartyRepository{pools: pools, identity: identity}
}

// PartyExists 按名字判断队伍是否存在
func (r *PartyRepository) PartyExists(name string) (bool, error) {
	var count int64
	err := r.pools.Acquire(db.RoleMisc).Model(&model.Party{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

// GetByName 按名字读取队伍（不含成员）
func (r *PartyRepository) GetByName(name string) (*model.Party, error) {
	var party model.Party
	err := r.pools.Acquire(db.RoleMisc).Where("name = ?", name).Take(&party).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPartyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &party, nil
}

// Create 新建队伍，口令明文在这里转哈希
func (r *PartyRepository) Create(party *model.Party, plainPassword string) error {
	exists, err := r.PartyExists(party.Name)
	if err != nil {
		return err
	}
	if exists {
		return ErrPartyExists
	}

	if plainPassword != "" {
		hash, err := password.Hash(plainPassword)
		if err != nil {
			return err
		}
		party.PasswordHash = &hash
	}
	return r.pools.Acquire(db.RoleMisc).Create(party).Error
}

// Save 写回单支队伍的可变状态（等级、经验、分享设置、锁定状态）
func (r *PartyRepository) Save(party *model.Party) error {
	return r.pools.Acquire(db.RoleMisc).Model(&model.Party{}).
		Where("id = ?", party.ID).
		Updates(map[string]interface{}{
			"leader_id":         party.LeaderID,
			"locked":            party.Locked,
			"level":             party.Level,
			"xp":                party.XP,
			"xp_share_mode":     party.XPShareMode,
			"item_share_mode":   party.ItemShareMode,
			"share_loot":        party.ShareLoot,
			"share_mining":      party.ShareMining,
			"share_herbalism":   party.ShareHerbalism,
			"share_woodcutting": party.ShareWoodcutting,
		}).Error
}

// SaveParties 批量写回，单支失败只记日志不中断
func (r *PartyRepository) SaveParties(parties []*model.Party) error {
	var firstErr error
	for _, party := range parties {
		if err := r.Save(party); err != nil {
			logger.Error("写回队伍失败", zap.String("party", party.Name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// LoadParties 读出全部队伍，填充成员列表和盟友名字
func (r *PartyRepository) LoadParties() ([]*model.Party, error) {
	gdb := r.pools.Acquire(db.RoleMisc)

	var parties []*model.Party
	if err := gdb.Order("name").Find(&parties).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*model.Party, len(parties))
	for _, party := range parties {
		byID[party.ID] = party
	}
	for _, party := range parties {
		if party.AllyID != nil {
			if ally, ok := byID[*party.AllyID]; ok {
				party.AllyName = ally.Name
			}
		}
	}

	// 成员一次性查出来再按队伍分组，避免 N+1
	var rows []struct {
		PartyID    uint
		Name       string
		ExternalID *string
	}
	members := model.PartyMember{}.TableName()
	users := model.User{}.TableName()
	err := gdb.Table(members+" m").
		Select("m.party_id, u.name, u.external_id").
		Joins("JOIN "+users+" u ON u.id = m.user_id").
		Order("u.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		party, ok := byID[row.PartyID]
		if !ok {
			continue
		}
		ref := model.PartyMemberRef{Name: row.Name}
		if row.ExternalID != nil {
			ref.ExternalID = *row.ExternalID
		}
		party.Members = append(party.Members, ref)
	}
	return parties, nil
}

// Delete 解散队伍
// 先解除双向盟约再删队伍行，成员关系由外键级联清掉
func (r *PartyRepository) Delete(name string) error {
	party, err := r.GetByName(name)
	if err != nil {
		return err
	}

	gdb := r.pools.Acquire(db.RoleMisc)
	if party.AllyID != nil {
		err = gdb.Model(&model.Party{}).
			Where("ally_id = ?", party.ID).
			Update("ally_id", nil).Error
		if err != nil {
			return err
		}
	}
	return gdb.Delete(&model.Party{}, party.ID).Error
}

// SetAllies 结盟是对称关系，两边同时写
// 任何一边已有盟友先各自解除
func (r *PartyRepository) SetAllies(nameA, nameB string) error {
	partyA, err := r.GetByName(nameA)
	if err != nil {
		return err
	}
	partyB, err := r.GetByName(nameB)
	if err != nil {
		return err
	}

	gdb := r.pools.Acquire(db.RoleMisc)
	for _, party := range []*model.Party{partyA, partyB} {
		if party.AllyID != nil {
			if err := r.clearAlliance(gdb, party); err != nil {
				return err
			}
		}
	}

	if err := gdb.Model(&model.Party{}).Where("id = ?", partyA.ID).
		Update("ally_id", partyB.ID).Error; err != nil {
		return err
	}
	return gdb.Model(&model.Party{}).Where("id = ?", partyB.ID).
		Update("ally_id", partyA.ID).Error
}

// DisbandAlliance 解除某支队伍的盟约（两边同时清空）
func (r *PartyRepository) DisbandAlliance(name string) error {
	party, err := r.GetByName(name)
	if err != nil {
		return err
	}
	if party.AllyID == nil {
		return nil
	}
	return r.clearAlliance(r.pools.Acquire(db.RoleMisc), party)
}

func (r *PartyRepository) clearAlliance(gdb *gorm.DB, party *model.Party) error {
	err := gdb.Model(&model.Party{}).
		Where("id = ? OR ally_id = ?", party.ID, party.ID).
		Update("ally_id", nil).Error
	if err == nil {
		party.AllyID = nil
	}
	return err
}

// SetLeader 换队长
func (r *PartyRepository) SetLeader(partyName, leaderName string) error {
	party, err := r.GetByName(partyName)
	if err != nil {
		return err
	}
	leaderID, err := r.identity.Resolve(leaderName, "")
	if err != nil {
		return err
	}
	return r.pools.Acquire(db.RoleMisc).Model(&model.Party{}).
		Where("id = ?", party.ID).
		Update("leader_id", leaderID).Error
}

// AddMember 把账号加入队伍
// 一个账号同时只在一支队伍里，换队伍时直接改指向
func (r *PartyRepository) AddMember(partyName, userName, externalID string) error {
	party, err := r.GetByName(partyName)
	if err != nil {
		return err
	}
	userID, err := r.identity.EnsureUser(userName, externalID)
	if err != nil {
		return err
	}

	member := model.PartyMember{UserID: userID, PartyID: party.ID}
	return r.pools.Acquire(db.RoleMisc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"party_id": party.ID}),
	}).Create(&member).Error
}

// RemoveMember 把账号移出所在队伍
func (r *PartyRepository) RemoveMember(userName string) error {
	userID, err := r.identity.Resolve(userName, "")
	if err != nil {
		return err
	}
	return r.pools.Acquire(db.RoleMisc).
		Where("user_id = ?", userID).
		Delete(&model.PartyMember{}).Error
}

// CheckPassword 校验入队口令
// 没设口令的队伍任何口令都放行
func (r *PartyRepository) CheckPassword(partyName, plain string) error {
	party, err := r.GetByName(partyName)
	if err != nil {
		return err
	}
	if party.PasswordHash == nil {
		return nil
	}
	if !password.Verify(plain, *party.PasswordHash) {
		return ErrPasswordMismatch
	}
	return nil
}
