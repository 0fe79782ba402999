package lead

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/apierror"
	"github.com/houzhh15/autopilot/internal/function"
	"github.com/houzhh15/autopilot/internal/models"
)

// Handler 线索 HTTP 处理器
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("lead_api"),
	}
}

// RegisterFunctions 注册公开函数端点
func (h *Handler) RegisterFunctions(rg gin.IRoutes) {
	function.Register(rg, "/capture-lead", h.CaptureLead)
}

// RegisterRoutes 注册需要认证的路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	{
		leads.GET("", h.ListLeads)
		leads.POST("/audit", h.SubmitAudit)
	}
}

// CaptureLead 采集线索
// POST /functions/v1/capture-lead
func (h *Handler) CaptureLead(c *gin.Context) {
	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.RespondFunction(c, h.logger, err)
		return
	}

	lead, err := h.service.Capture(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		apierror.RespondFunction(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead, "success": true})
}

// SubmitAudit 提交维护审计表单
// POST /api/v1/leads/audit
func (h *Handler) SubmitAudit(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
		return
	}

	lead, err := h.service.Audit(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": lead})
}

// ListLeads 查询线索
// GET /api/v1/leads
func (h *Handler) ListLeads(c *gin.Context) {
	opts := models.DefaultListOptions()
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = v
	}

	leads, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leads, "count": len(leads)})
}
