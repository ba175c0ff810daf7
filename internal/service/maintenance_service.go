package service

import (
	"errors"

	"mmo-system/internal/repository"
	"mmo-system/pkg/redis"
)

// MaintenanceService 维护服务（管理接口专用）
type MaintenanceService struct {
	maintenanceRepo *repository.MaintenanceRepository
}

// NewMaintenanceService 创建MaintenanceService实例
func NewMaintenanceService(maintenanceRepo *repository.MaintenanceRepository) *MaintenanceService {
	return &MaintenanceService{maintenanceRepo: maintenanceRepo}
}

// PurgePowerless 清理零等级账号
func (s *MaintenanceService) PurgePowerless() (int, error) {
	purged, err := s.maintenanceRepo.PurgePowerless()
	if err != nil {
		return 0, err
	}
	s.invalidateLeaderboards(purged)
	return purged, nil
}

// PurgeStale 清理长期不活跃账号
func (s *MaintenanceService) PurgeStale() (int, error) {
	purged, err := s.maintenanceRepo.PurgeStale()
	if err != nil {
		return 0, err
	}
	s.invalidateLeaderboards(purged)
	return purged, nil
}

// RemoveUser 删除单个账号
func (s *MaintenanceService) RemoveUser(name string) error {
	if name == "" {
		return errors.New("玩家名不能为空")
	}
	if err := s.maintenanceRepo.RemoveUser(name); err != nil {
		return err
	}
	s.invalidateLeaderboards(1)
	return nil
}

// ResetHudSettings 重置全部账号的血条模式
func (s *MaintenanceService) ResetHudSettings() error {
	return s.maintenanceRepo.ResetHudSettings()
}

// invalidateLeaderboards 清理动过账号数据后排行榜缓存必须失效
func (s *MaintenanceService) invalidateLeaderboards(affected int) {
	if affected > 0 && redis.Enabled() {
		_ = redis.ClearLeaderboardCache()
	}
}
