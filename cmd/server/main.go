package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mmo-system/config"
	"mmo-system/internal/handler"
	"mmo-system/internal/model"
	"mmo-system/internal/repository"
	"mmo-system/internal/schema"
	"mmo-system/internal/service"
	dbPkg "mmo-system/pkg/db"
	"mmo-system/pkg/jwt"
	"mmo-system/pkg/logger"
	redisPkg "mmo-system/pkg/redis"
	"mmo-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== MMO数据服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.String("table_prefix", cfg.Database.TablePrefix),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 表名前缀必须在任何模型操作之前定下来
	model.SetTablePrefix(cfg.Database.TablePrefix)

	// 3.1 初始化三个角色连接池
	pools, err := dbPkg.InitPools(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := pools.Close(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.2 建表与结构升级，业务读写之前必须完成
	schemaMgr := schema.NewManager(pools, cfg.Game, nil)
	if err := schemaMgr.EnsureStructure(); err != nil {
		log.Fatal("数据库结构检查失败", zap.Error(err))
	}
	log.Info("数据库结构检查完成")

	// 3.3 初始化Redis（可选，失败只降级不退出）
	if cfg.Redis.Enabled {
		if err := redisPkg.InitRedis(cfg.Redis); err != nil {
			log.Warn("Redis初始化失败，排行榜缓存停用", zap.Error(err))
		} else {
			defer redisPkg.Close()
			log.Info("Redis连接成功")
		}
	}

	// 3.4 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	identityRepo := repository.NewIdentityRepository(pools, cfg.Game)
	profileRepo := repository.NewProfileRepository(pools, cfg.Game, identityRepo)
	partyRepo := repository.NewPartyRepository(pools, identityRepo)
	leaderboardRepo := repository.NewLeaderboardRepository(pools)
	maintenanceRepo := repository.NewMaintenanceRepository(pools, cfg.Game, identityRepo)

	profileSvc := service.NewProfileService(profileRepo, identityRepo)
	partySvc := service.NewPartyService(partyRepo)
	leaderboardSvc := service.NewLeaderboardService(leaderboardRepo)
	maintenanceSvc := service.NewMaintenanceService(maintenanceRepo)

	profileHandler := handler.NewProfileHandler(profileSvc)
	partyHandler := handler.NewPartyHandler(partySvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	adminHandler := handler.NewAdminHandler(maintenanceSvc, profileSvc, jwtSvc, cfg.JWT)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.LoggerMiddleware())
	router.Use(logger.ErrorLoggerMiddleware())

	// 6. 基础路由
	setupBasicRoutes(router, pools)

	// 6.1 业务路由
	api := router.Group("/api")
	{
		profiles := api.Group("/profiles")
		{
			profiles.GET("/:name", profileHandler.LoadProfile)
			profiles.PUT("/:name", profileHandler.SaveProfile)
			profiles.PUT("/:name/external-id", profileHandler.SaveExternalID)
		}

		parties := api.Group("/parties")
		{
			parties.GET("", partyHandler.ListParties)
			parties.POST("", partyHandler.CreateParty)
			parties.GET("/:name", partyHandler.GetParty)
			parties.PUT("/:name", partyHandler.UpdateParty)
			parties.DELETE("/:name", partyHandler.DisbandParty)
			parties.POST("/:name/members", partyHandler.JoinParty)
			parties.PUT("/:name/leader", partyHandler.SetLeader)
			parties.PUT("/:name/ally", partyHandler.FormAlliance)
			parties.DELETE("/:name/ally", partyHandler.DisbandAlliance)
			parties.DELETE("/members/:user", partyHandler.LeaveParty)
		}

		api.GET("/leaderboards/:skill", leaderboardHandler.Page)
		api.GET("/ranks/:name", leaderboardHandler.RankOf)

		// 管理路由（令牌签发本身不需要令牌，其余需要）
		admin := api.Group("/admin")
		admin.POST("/token", adminHandler.IssueToken)
		authAdmin := admin.Group("")
		authAdmin.Use(jwtSvc.AuthMiddleware())
		{
			authAdmin.GET("/users", adminHandler.StoredUserNames)
			authAdmin.DELETE("/users/:name", adminHandler.RemoveUser)
			authAdmin.POST("/purge/powerless", adminHandler.PurgePowerless)
			authAdmin.POST("/purge/stale", adminHandler.PurgeStale)
			authAdmin.POST("/reset-hud", adminHandler.ResetHudSettings)
			authAdmin.POST("/external-ids", adminHandler.BackfillExternalIDs)
		}
	}

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, pools *dbPkg.Manager) {
	// 健康检查
	// 完整url为：http://localhost:8080/health
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := pools.HealthCheck(); err != nil {
			status = "db-down"
		}
		cache := "disabled"
		if redisPkg.Enabled() {
			cache = "ok"
			if err := redisPkg.HealthCheck(); err != nil {
				cache = "down"
			}
		}
		response.Success(c, gin.H{
			"status": status,
			"cache":  cache,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 根路径
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "MMO数据服务",
			"version": "1.0.0",
		})
	})
}
