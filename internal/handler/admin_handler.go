package handler

import (
	"crypto/subtle"
	"errors"

	"mmo-system/config"
	"mmo-system/internal/repository"
	"mmo-system/internal/service"
	"mmo-system/pkg/jwt"
	"mmo-system/pkg/logger"
	"mmo-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler 管理接口处理器
// 清理、重置、外部标识回填这类重操作全部走这里，必须带合法令牌
type AdminHandler struct {
	maintenance *service.MaintenanceService
	profiles    *service.ProfileService
	jwtService  *jwt.JWTService
	jwtCfg      config.JWTConfig
}

// NewAdminHandler 创建AdminHandler实例
func NewAdminHandler(maintenance *service.MaintenanceService, profiles *service.ProfileService,
	jwtService *jwt.JWTService, jwtCfg config.JWTConfig) *AdminHandler {
	return &AdminHandler{
		maintenance: maintenance,
		profiles:    profiles,
		jwtService:  jwtService,
		jwtCfg:      jwtCfg,
	}
}

// IssueToken 管理令牌签发
// POST /api/admin/token
// 凭共享管理密钥换取有期限的访问令牌，后续操作都用令牌留痕
func (h *AdminHandler) IssueToken(c *gin.Context) {
	type req struct {
		Operator string `json:"operator" binding:"required"`
		Secret   string `json:"secret" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if subtle.ConstantTimeCompare([]byte(r.Secret), []byte(h.jwtCfg.Secret)) != 1 {
		logger.Warn("管理令牌签发被拒",
			zap.String("operator", r.Operator),
			zap.String("ip", c.ClientIP()),
		)
		response.Unauthorized(c, "管理密钥不正确")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Operator, nil)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"access_token": token})
}

// PurgePowerless 清理零等级账号
// POST /api/admin/purge/powerless
func (h *AdminHandler) PurgePowerless(c *gin.Context) {
	purged, err := h.maintenance.PurgePowerless()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, response.PurgeResponse{Purged: purged})
}

// PurgeStale 清理长期不活跃账号
// POST /api/admin/purge/stale
func (h *AdminHandler) PurgeStale(c *gin.Context) {
	purged, err := h.maintenance.PurgeStale()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, response.PurgeResponse{Purged: purged})
}

// RemoveUser 删除单个账号
// DELETE /api/admin/users/:name
func (h *AdminHandler) RemoveUser(c *gin.Context) {
	name := c.Param("name")

	if err := h.maintenance.RemoveUser(name); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "账号不存在")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	logger.Info("管理删除账号",
		zap.String("operator", jwt.GetOperator(c)),
		zap.String("name", name),
	)
	response.SuccessWithMessage(c, "账号已删除", nil)
}

// ResetHudSettings 重置全部账号的血条模式
// POST /api/admin/reset-hud
func (h *AdminHandler) ResetHudSettings(c *gin.Context) {
	if err := h.maintenance.ResetHudSettings(); err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "血条模式已重置", nil)
}

// BackfillExternalIDs 批量补写外部标识
// POST /api/admin/external-ids
func (h *AdminHandler) BackfillExternalIDs(c *gin.Context) {
	var ids map[string]string
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.profiles.SaveExternalIDs(ids); err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"updated": len(ids)})
}

// StoredUserNames 全部在册账号名
// GET /api/admin/users
func (h *AdminHandler) StoredUserNames(c *gin.Context) {
	names, err := h.profiles.StoredUserNames()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"count": len(names), "names": names})
}
