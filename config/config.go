package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置结构体
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`         // 服务器监听端口
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // 空闲超时时间
}

// PoolConfig 单个连接池的容量配置
type PoolConfig struct {
	MaxOpen int `yaml:"maxOpen"` // 最大打开连接数
	MaxIdle int `yaml:"maxIdle"` // 最大空闲连接数
}

// DatabaseConfig 数据库配置
// 三个连接池共享同一个数据库端点，容量各自独立调优：
// misc 负责杂项与后台任务，load 负责读档，save 负责存档
type DatabaseConfig struct {
	Host        string        `yaml:"host"`        // 数据库主机地址
	Port        int           `yaml:"port"`        // 数据库端口
	Username    string        `yaml:"username"`    // 数据库用户名
	Password    string        `yaml:"password"`    // 数据库密码
	Database    string        `yaml:"database"`    // 数据库名称
	Charset     string        `yaml:"charset"`     // 字符集
	TablePrefix string        `yaml:"tablePrefix"` // 表名前缀
	ReapAfter   time.Duration `yaml:"reapAfter"`   // 空闲连接回收时间
	MiscPool    PoolConfig    `yaml:"miscPool"`    // 杂项连接池
	LoadPool    PoolConfig    `yaml:"loadPool"`    // 读档连接池
	SavePool    PoolConfig    `yaml:"savePool"`    // 存档连接池
}

// JWTConfig JWT配置（管理接口鉴权）
type JWTConfig struct {
	Secret     string        `yaml:"secret"`     // JWT密钥
	ExpireTime time.Duration `yaml:"expireTime"` // JWT过期时间
	Issuer     string        `yaml:"issuer"`     // JWT签发者
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // 日志级别
	Filename   string `yaml:"filename"`   // 日志文件名
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`   // 是否压缩
}

// RedisConfig Redis配置（排行榜页缓存，可选）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`  // 是否启用缓存
	Host     string `yaml:"host"`     // Redis主机地址
	Port     int    `yaml:"port"`     // Redis端口
	Password string `yaml:"password"` // Redis密码
	DB       int    `yaml:"db"`       // Redis数据库编号
}

// GameConfig 游戏数据相关配置
type GameConfig struct {
	StartingLevel    int           `yaml:"startingLevel"`    // 新账号各技能初始等级
	LevelCap         int           `yaml:"levelCap"`         // 技能等级上限（0表示不限）
	TruncateSkills   bool          `yaml:"truncateSkills"`   // 启动时是否把超上限等级截断
	DefaultHealthbar string        `yaml:"defaultHealthbar"` // 默认血条显示模式
	PurgeRetention   time.Duration `yaml:"purgeRetention"`   // 不活跃账号保留时间
}

// LoadConfig 加载配置（混合方式：YAML文件 + 环境变量）
func LoadConfig() *Config {
	// 1. 首先从YAML文件加载默认配置
	config := loadFromYAML("config/config.yaml")

	// 2. 用环境变量覆盖配置（环境变量优先级更高）
	overrideWithEnvVars(config)

	return config
}

// loadFromYAML 从YAML文件加载配置
func loadFromYAML(filePath string) *Config {
	// 读取配置文件
	data, err := os.ReadFile(filePath)
	if err != nil {
		// 如果文件不存在，返回默认配置
		return getDefaultConfig()
	}

	// 解析YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		// 如果解析失败，返回默认配置
		return getDefaultConfig()
	}

	return &config
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	// 服务器配置
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}

	// 数据库配置
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if prefix := getEnv("DB_TABLE_PREFIX", ""); prefix != "" {
		config.Database.TablePrefix = prefix
	}
	if reap := getEnvDuration("DB_REAP_AFTER", 0); reap > 0 {
		config.Database.ReapAfter = reap
	}
	if maxOpen := getEnvInt("DB_MISC_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MiscPool.MaxOpen = maxOpen
	}
	if maxIdle := getEnvInt("DB_MISC_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MiscPool.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_LOAD_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.LoadPool.MaxOpen = maxOpen
	}
	if maxIdle := getEnvInt("DB_LOAD_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.LoadPool.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_SAVE_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.SavePool.MaxOpen = maxOpen
	}
	if maxIdle := getEnvInt("DB_SAVE_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.SavePool.MaxIdle = maxIdle
	}

	// JWT配置
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}

	// Redis配置
	if enabled := getEnv("REDIS_ENABLED", ""); enabled != "" {
		config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	}
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// 游戏数据配置
	if level := getEnvInt("GAME_STARTING_LEVEL", -1); level >= 0 {
		config.Game.StartingLevel = level
	}
	if levelCap := getEnvInt("GAME_LEVEL_CAP", -1); levelCap >= 0 {
		config.Game.LevelCap = levelCap
	}
	if healthbar := getEnv("GAME_DEFAULT_HEALTHBAR", ""); healthbar != "" {
		config.Game.DefaultHealthbar = healthbar
	}
	if retention := getEnvDuration("GAME_PURGE_RETENTION", 0); retention > 0 {
		config.Game.PurgeRetention = retention
	}
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:        "localhost",
			Port:        3306,
			Username:    "mmo_user",
			Password:    "",
			Database:    "mmo_system",
			Charset:     "utf8mb4",
			TablePrefix: "mmo_",
			ReapAfter:   60 * time.Second,
			MiscPool:    PoolConfig{MaxOpen: 10, MaxIdle: 5},
			LoadPool:    PoolConfig{MaxOpen: 20, MaxIdle: 10},
			SavePool:    PoolConfig{MaxOpen: 20, MaxIdle: 10},
		},
		JWT: JWTConfig{
			Secret:     "your-secret-key",
			ExpireTime: 24 * time.Hour,
			Issuer:     "mmo-system",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Game: GameConfig{
			StartingLevel:    0,
			LevelCap:         0,
			TruncateSkills:   false,
			DefaultHealthbar: "HEARTS",
			PurgeRetention:   6 * 30 * 24 * time.Hour,
		},
	}
}

// 辅助函数：获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 辅助函数：获取时间环境变量
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
