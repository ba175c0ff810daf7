package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mmo-system/config"
	"mmo-system/internal/model"
	"mmo-system/pkg/db"
	"mmo-system/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileSink 存档的写入目标，换库迁移时由目标端实现
type ProfileSink interface {
	Save(profile *model.Profile) error
}

// ProfileRepository 玩家存档仓储
// 读档走 load 池，存档走 save 池，身份解析和补行走 misc 池
type ProfileRepository struct {
	pools    *db.Manager
	game     config.GameConfig
	identity *IdentityRepository
}

// NewProfileRepository 创建ProfileRepository实例
func NewProfileRepository(pools *db.Manager, game config.GameConfig, identity *IdentityRepository) *ProfileRepository {
	return &ProfileRepository{pools: pools, game: game, identity: identity}
}

// Load 读取一个玩家的完整存档
// create=true 时账号不存在就新建；第一次联表查询落空会补齐子表行
// 再试一次；彻底失败时返回未加载档案而不是错误，调用方按 Loaded
// 判断能否在之后安全回写
func (r *ProfileRepository) Load(name, externalID string, create bool) (*model.Profile, error) {
	id, err := r.identity.Resolve(name, externalID)
	if errors.Is(err, ErrUserNotFound) {
		if !create {
			return model.NewProfile(name, false), nil
		}
		id, err = r.identity.Create(name, externalID)
	}
	if err != nil {
		logger.Error("解析账号失败", zap.String("name", name), zap.Error(err))
		return model.NewProfile(name, false), err
	}

	profile, storedName, err := r.loadByID(id)
	if err != nil {
		// 子表行可能缺失（历史数据或上次建号中断），补齐后重试一次
		if fixErr := ensureChildRows(r.pools.Acquire(db.RoleMisc), id, r.game); fixErr != nil {
			logger.Error("补齐子表行失败", zap.Uint("id", id), zap.Error(fixErr))
		}
		profile, storedName, err = r.loadByID(id)
	}
	if err != nil {
		logger.Error("读档失败", zap.String("name", name), zap.Uint("id", id), zap.Error(err))
		return model.NewProfile(name, false), nil
	}

	// 行里的名字和当前名字不一致说明玩家改过名，顺手修正
	if storedName != name {
		if err := r.identity.ReconcileName(id, name); err != nil {
			logger.Error("改名修正失败", zap.String("name", name), zap.Error(err))
		}
	}
	profile.Name = name
	// 调用方没带外部标识时沿用行里存的值，转存时身份锚点不能丢
	if externalID != "" {
		profile.ExternalID = externalID
	}
	return profile, nil
}

// loadByID 联表读出存档投影，列按规范顺序排列并按位置扫描
func (r *ProfileRepository) loadByID(id uint) (*model.Profile, string, error) {
	skills := model.Skills{}.TableName()
	exp := model.Experience{}.TableName()
	cds := model.Cooldowns{}.TableName()
	hud := model.Hud{}.TableName()
	users := model.User{}.TableName()

	selects := []string{"u.name", "u.external_id"}
	for _, skill := range model.PrimarySkills {
		selects = append(selects, "s."+string(skill))
	}
	for _, skill := range model.PrimarySkills {
		selects = append(selects, "e."+string(skill))
	}
	for _, ability := range model.Abilities {
		selects = append(selects, "c."+string(ability))
	}
	selects = append(selects, "c.recall", "h.healthbar", "h.tips_shown")

	row := r.pools.Acquire(db.RoleLoad).
		Table(users+" u").
		Select(strings.Join(selects, ", ")).
		Joins(fmt.Sprintf("JOIN %s s ON s.user_id = u.id", skills)).
		Joins(fmt.Sprintf("JOIN %s e ON e.user_id = u.id", exp)).
		Joins(fmt.Sprintf("JOIN %s c ON c.user_id = u.id", cds)).
		Joins(fmt.Sprintf("JOIN %s h ON h.user_id = u.id", hud)).
		Where("u.id = ?", id).
		Row()

	var name string
	var storedExternal sql.NullString
	levels := make([]int, len(model.PrimarySkills))
	points := make([]float64, len(model.PrimarySkills))
	timers := make([]int64, len(model.Abilities))
	var recall int64
	var healthbar sql.NullString
	var tipsShown int

	dests := []interface{}{&name, &storedExternal}
	for i := range levels {
		dests = append(dests, &levels[i])
	}
	for i := range points {
		dests = append(dests, &points[i])
	}
	for i := range timers {
		dests = append(dests, &timers[i])
	}
	dests = append(dests, &recall, &healthbar, &tipsShown)

	if err := row.Scan(dests...); err != nil {
		return nil, "", err
	}

	profile := model.NewProfile(name, true)
	if storedExternal.Valid {
		profile.ExternalID = storedExternal.String
	}
	for i, skill := range model.PrimarySkills {
		profile.SkillLevels[skill] = levels[i]
		profile.SkillXP[skill] = points[i]
	}
	for i, ability := range model.Abilities {
		profile.AbilityCooldowns[ability] = timers[i]
	}
	profile.RecallCooldown = recall
	profile.Healthbar = model.ParseHealthbarMode(healthbar.String,
		model.ParseHealthbarMode(r.game.DefaultHealthbar, model.HealthbarHearts))
	profile.TipsShown = tipsShown
	return profile, name, nil
}

// Save 分五步写回存档：登录时间、技能等级、经验、冷却、界面偏好
// 五步走同一条存档池连接但不在一个事务里，哪一步更新不到行就停在
// 哪一步并报 ErrSaveIncomplete，已写入的步骤保持原样。
// 未加载的档案拒绝写回，防止把空档案盖到真实数据上
func (r *ProfileRepository) Save(profile *model.Profile) error {
	if !profile.Loaded {
		return fmt.Errorf("%w: 未加载的档案不能写回", ErrSaveIncomplete)
	}

	id, err := r.identity.EnsureUser(profile.Name, profile.ExternalID)
	if err != nil {
		return err
	}

	return r.pools.Conn(db.RoleSave, func(tx *gorm.DB) error {
		if err := savePhase(tx.Model(&model.User{}).
			Where("id = ?", id).
			Update("last_login", time.Now().Unix()), "登录时间"); err != nil {
			return err
		}

		levelUpdates := make(map[string]interface{}, len(model.PrimarySkills)+1)
		total := 0
		for _, skill := range model.PrimarySkills {
			level := profile.SkillLevels[skill]
			levelUpdates[string(skill)] = level
			total += level
		}
		levelUpdates["total"] = total
		if err := savePhase(tx.Model(&model.Skills{}).
			Where("user_id = ?", id).
			Updates(levelUpdates), "技能等级"); err != nil {
			return err
		}

		xpUpdates := make(map[string]interface{}, len(model.PrimarySkills))
		for _, skill := range model.PrimarySkills {
			xpUpdates[string(skill)] = profile.SkillXP[skill]
		}
		if err := savePhase(tx.Model(&model.Experience{}).
			Where("user_id = ?", id).
			Updates(xpUpdates), "技能经验"); err != nil {
			return err
		}

		cdUpdates := make(map[string]interface{}, len(model.Abilities)+1)
		for _, ability := range model.Abilities {
			cdUpdates[string(ability)] = profile.AbilityCooldowns[ability]
		}
		cdUpdates["recall"] = profile.RecallCooldown
		if err := savePhase(tx.Model(&model.Cooldowns{}).
			Where("user_id = ?", id).
			Updates(cdUpdates), "技能冷却"); err != nil {
			return err
		}

		return savePhase(tx.Model(&model.Hud{}).
			Where("user_id = ?", id).
			Updates(map[string]interface{}{
				"healthbar":  string(profile.Healthbar),
				"tips_shown": profile.TipsShown,
			}), "界面偏好")
	})
}

// savePhase 检查单步更新的命中行数，0 行视为该步失败
func savePhase(res *gorm.DB, phase string) error {
	if res.Error != nil {
		return fmt.Errorf("写入%s失败: %w", phase, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s未命中任何行", ErrSaveIncomplete, phase)
	}
	return nil
}

// SaveExternalID 给单个账号补写外部标识
func (r *ProfileRepository) SaveExternalID(name, externalID string) error {
	bulkMu.Lock()
	defer bulkMu.Unlock()
	return r.saveExternalID(name, externalID)
}

// SaveExternalIDs 批量补写外部标识，整批持有批量锁
func (r *ProfileRepository) SaveExternalIDs(ids map[string]string) error {
	bulkMu.Lock()
	defer bulkMu.Unlock()
	for name, externalID := range ids {
		if err := r.saveExternalID(name, externalID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProfileRepository) saveExternalID(name, externalID string) error {
	return r.pools.Acquire(db.RoleMisc).Model(&model.User{}).
		Where("name = ?", name).
		Update("external_id", externalID).Error
}

// StoredUserNames 返回全部在册账号名
func (r *ProfileRepository) StoredUserNames() ([]string, error) {
	var names []string
	err := r.pools.Acquire(db.RoleMisc).Model(&model.User{}).
		Where("retired = ?", false).
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

// ConvertAll 把全部存档逐个读出并写入目标端，换库迁移用
// 单个账号失败只记数不中断，返回成功和失败的数量
func (r *ProfileRepository) ConvertAll(dest ProfileSink) (converted, failed int, err error) {
	names, err := r.StoredUserNames()
	if err != nil {
		return 0, 0, err
	}

	for i, name := range names {
		profile, loadErr := r.Load(name, "", false)
		if loadErr != nil || !profile.Loaded {
			failed++
			continue
		}
		if saveErr := dest.Save(profile); saveErr != nil {
			logger.Error("迁移存档失败", zap.String("name", name), zap.Error(saveErr))
			failed++
			continue
		}
		converted++
		if (i+1)%100 == 0 {
			logger.Info("存档迁移进度",
				zap.Int("done", i+1),
				zap.Int("total", len(names)),
			)
		}
	}
	return converted, failed, nil
}
