package generation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/apierror"
	"github.com/houzhh15/autopilot/internal/function"
)

// Handler 生成 HTTP 处理器
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("generation_api"),
	}
}

// RegisterFunctions 注册公开函数端点
func (h *Handler) RegisterFunctions(rg gin.IRoutes) {
	function.Register(rg, "/generate-post", h.GeneratePost)
}

// RegisterRoutes 注册需要认证的路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/campaigns/:id/posts", h.ListPosts)
}

// GeneratePost 生成帖子
// POST /functions/v1/generate-post
func (h *Handler) GeneratePost(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.RespondFunction(c, h.logger, err)
		return
	}

	post, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		apierror.RespondFunction(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": post})
}

// ListPosts 查询活动的帖子
// GET /api/v1/campaigns/:id/posts
func (h *Handler) ListPosts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage("Invalid campaign ID format"))
		return
	}

	posts, err := h.service.ListByCampaign(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": posts, "count": len(posts)})
}
