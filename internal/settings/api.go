package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/apierror"
	"github.com/houzhh15/autopilot/pkg/auth"
)

// Handler 设置 HTTP 处理器
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("settings_api"),
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("/plan", h.GetPlan)
		settings.GET("/connections", h.ListConnections)
		settings.POST("/connections/:platform/connect", h.Connect)
		settings.POST("/connections/:platform/disconnect", h.Disconnect)
	}
}

// GetPlan 当前套餐
// GET /api/v1/settings/plan
func (h *Handler) GetPlan(c *gin.Context) {
	user, ok := auth.UserFromGin(c)
	if !ok {
		apierror.Respond(c, h.logger, apierror.ErrUnauthorized)
		return
	}
	plan, err := h.service.Plan(c.Request.Context(), user.UserID)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plan})
}

// ListConnections 平台连接状态
// GET /api/v1/settings/connections
func (h *Handler) ListConnections(c *gin.Context) {
	user, ok := auth.UserFromGin(c)
	if !ok {
		apierror.Respond(c, h.logger, apierror.ErrUnauthorized)
		return
	}
	conns, err := h.service.Connections(c.Request.Context(), user.UserID)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": conns})
}

// Connect 连接平台
// POST /api/v1/settings/connections/:platform/connect
func (h *Handler) Connect(c *gin.Context) {
	user, ok := auth.UserFromGin(c)
	if !ok {
		apierror.Respond(c, h.logger, apierror.ErrUnauthorized)
		return
	}
	if err := h.service.Connect(c.Request.Context(), user.UserID, c.Param("platform")); err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Disconnect 断开平台
// POST /api/v1/settings/connections/:platform/disconnect
func (h *Handler) Disconnect(c *gin.Context) {
	user, ok := auth.UserFromGin(c)
	if !ok {
		apierror.Respond(c, h.logger, apierror.ErrUnauthorized)
		return
	}
	if err := h.service.Disconnect(c.Request.Context(), user.UserID, c.Param("platform")); err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Platform disconnected"})
}
