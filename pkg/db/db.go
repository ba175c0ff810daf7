package db

import (
	"fmt"
	"time"

	"mmo-system/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Role 连接池角色
// 三个池共享同一个数据库端点但容量独立：读档洪峰不会饿死存档，
// 反之亦然；一次逻辑操作同时要读和写时可以从两个池各拿一条连接，
// 不会在单个耗尽的池上自锁
type Role string

const (
	RoleMisc Role = "misc" // 杂项与后台任务
	RoleLoad Role = "load" // 读档
	RoleSave Role = "save" // 存档
)

// Manager 连接池管理器，持有三个按角色调优的 gorm 句柄
type Manager struct {
	misc *gorm.DB
	load *gorm.DB
	save *gorm.DB
}

// 全局管理器实例
var defaultManager *Manager

// InitPools 初始化三个连接池并测试连通性
func InitPools(cfg config.DatabaseConfig) (*Manager, error) {
	// clientFoundRows=True 让受影响行数按"匹配行数"计：
	// 值没变化的 UPDATE 不能被误判成失败
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local&clientFoundRows=True",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.Charset,
	)

	m := &Manager{}

	pools := []struct {
		role   Role
		tuning config.PoolConfig
		target **gorm.DB
	}{
		{RoleMisc, cfg.MiscPool, &m.misc},
		{RoleLoad, cfg.LoadPool, &m.load},
		{RoleSave, cfg.SavePool, &m.save},
	}

	for _, p := range pools {
		gdb, err := openPool(dsn, p.tuning, cfg.ReapAfter)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("初始化%s连接池失败: %w", p.role, err)
		}
		*p.target = gdb
	}

	defaultManager = m
	return m, nil
}

// openPool 打开并调优单个连接池
func openPool(dsn string, tuning config.PoolConfig, reapAfter time.Duration) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),

		// 禁用默认事务（提高性能）
		SkipDefaultTransaction: true,

		// 准备语句（提高性能）
		PrepareStmt: true,
	}

	gdb, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %w", err)
	}

	// 不预热连接，按需建立；空闲超时后回收，相当于遗弃连接清理
	sqlDB.SetMaxOpenConns(tuning.MaxOpen)
	sqlDB.SetMaxIdleConns(tuning.MaxIdle)
	sqlDB.SetConnMaxIdleTime(reapAfter)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	return gdb, nil
}

// NewManagerFromDB 用一个现成的 gorm 句柄构造管理器（三个角色共用），
// 供工具与测试使用
func NewManagerFromDB(gdb *gorm.DB) *Manager {
	return &Manager{misc: gdb, load: gdb, save: gdb}
}

// Default 获取全局管理器实例
func Default() *Manager {
	return defaultManager
}

// Acquire 按角色获取连接池句柄
func (m *Manager) Acquire(role Role) *gorm.DB {
	switch role {
	case RoleLoad:
		return m.load
	case RoleSave:
		return m.save
	default:
		return m.misc
	}
}

// Conn 从指定池固定一条连接执行 fn，期间的多条语句保证走同一条连接，
// fn 返回后连接在所有路径上都会归还
func (m *Manager) Conn(role Role, fn func(tx *gorm.DB) error) error {
	return m.Acquire(role).Connection(fn)
}

// Close 关闭全部连接池
func (m *Manager) Close() error {
	var firstErr error
	for _, gdb := range []*gorm.DB{m.misc, m.load, m.save} {
		if gdb == nil {
			continue
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HealthCheck 数据库健康检查（三个池都要通）
func (m *Manager) HealthCheck() error {
	if m == nil {
		return fmt.Errorf("连接池未初始化")
	}
	for _, gdb := range []*gorm.DB{m.misc, m.load, m.save} {
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("获取数据库实例失败: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}
	}
	return nil
}
