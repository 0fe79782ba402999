package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/apierror"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/pkg/auth"
)

// GenerateReportRequest 报告生成请求
type GenerateReportRequest struct {
	Type models.ReportType `json:"type" binding:"required"`
}

// Handler 统计 HTTP 处理器
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("analytics_api"),
	}
}

// RegisterRoutes 注册路由，/admin 下的路由仅管理员可访问
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.GetDashboard)
	rg.GET("/reports", h.GetCampaignReport)

	admin := rg.Group("/admin", auth.RequireAdmin())
	{
		admin.GET("/analytics", h.GetAdminAnalytics)
		admin.GET("/reports", h.ListReports)
		admin.POST("/reports", h.GenerateReport)
	}
}

// GetDashboard 首页概览
// GET /api/v1/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

// GetCampaignReport 活动报告，campaign_id 为空或 all 时统计全部
// GET /api/v1/reports?campaign_id=
func (h *Handler) GetCampaignReport(c *gin.Context) {
	var campaignID *uuid.UUID
	if raw := c.Query("campaign_id"); raw != "" && raw != "all" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage("Invalid campaign ID format"))
			return
		}
		campaignID = &id
	}

	report, err := h.service.CampaignReport(c.Request.Context(), campaignID)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// GetAdminAnalytics 管理员统计
// GET /api/v1/admin/analytics
func (h *Handler) GetAdminAnalytics(c *gin.Context) {
	a, err := h.service.Admin(c.Request.Context())
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

// ListReports 最近 10 份报告
// GET /api/v1/admin/reports
func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reports})
}

// GenerateReport 生成报告
// POST /api/v1/admin/reports
func (h *Handler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
		return
	}

	report, err := h.service.GenerateReport(c.Request.Context(), req.Type)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": report})
}
