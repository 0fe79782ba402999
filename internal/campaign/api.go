package campaign

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/apierror"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/pkg/auth"
)

// Handler 活动 HTTP API 处理器
type Handler struct {
	service *Service
	wizard  *WizardService
	logger  *zap.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(service *Service, wizard *WizardService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		wizard:  wizard,
		logger:  logger.Named("campaign_api"),
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	campaigns := rg.Group("/campaigns")
	{
		campaigns.GET("", h.ListCampaigns)
		campaigns.POST("", h.CreateCampaign)
		campaigns.GET("/:id", h.GetCampaign)
		campaigns.PUT("/:id", h.UpdateCampaign)
		campaigns.DELETE("/:id", h.DeleteCampaign)
		campaigns.POST("/:id/duplicate", h.DuplicateCampaign)
		campaigns.POST("/:id/toggle-status", h.ToggleStatus)
	}

	wizard := rg.Group("/campaign-wizard")
	{
		wizard.GET("/options", h.GetOptions)
		wizard.POST("", h.StartWizard)
		wizard.GET("/:sid", h.GetWizard)
		wizard.PATCH("/:sid", h.PatchWizard)
		wizard.POST("/:sid/toggle", h.ToggleWizardField)
		wizard.POST("/:sid/next", h.NextStep)
		wizard.POST("/:sid/back", h.PrevStep)
		wizard.POST("/:sid/reset", h.ResetWizard)
		wizard.POST("/:sid/submit", h.SubmitWizard)
	}

	rg.POST("/onboarding", h.Onboard)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage("Invalid campaign ID format"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) currentUser(c *gin.Context) (*auth.UserClaims, bool) {
	claims, ok := auth.UserFromGin(c)
	if !ok {
		apierror.Respond(c, h.logger, apierror.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// ==================== 活动 API ====================

// ListCampaigns 获取活动列表
// GET /api/v1/campaigns
func (h *Handler) ListCampaigns(c *gin.Context) {
	opts := models.DefaultListOptions()
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = v
	}

	campaigns, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CampaignListResponse{Data: campaigns, Count: len(campaigns)})
}

// GetCampaign 获取活动详情
// GET /api/v1/campaigns/:id
func (h *Handler) GetCampaign(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	campaign, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": campaign})
}

// CreateCampaign 创建活动
// POST /api/v1/campaigns
func (h *Handler) CreateCampaign(c *gin.Context) {
	var form Form
	if err := c.ShouldBindJSON(&form); err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
		return
	}
	campaign, err := h.service.Create(c.Request.Context(), form)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": campaign})
}

// UpdateCampaign 更新活动
// PUT /api/v1/campaigns/:id
func (h *Handler) UpdateCampaign(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var form Form
	if err := c.ShouldBindJSON(&form); err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
		return
	}
	campaign, err := h.service.Update(c.Request.Context(), id, form)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": campaign})
}

// DeleteCampaign 删除活动
// DELETE /api/v1/campaigns/:id
func (h *Handler) DeleteCampaign(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}

// DuplicateCampaign 复制活动
// POST /api/v1/campaigns/:id/duplicate
func (h *Handler) DuplicateCampaign(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	campaign, err := h.service.Duplicate(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": campaign})
}

// ToggleStatus 切换活动状态
// POST /api/v1/campaigns/:id/toggle-status
func (h *Handler) ToggleStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	campaign, err := h.service.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": campaign})
}

// Onboard 新手引导
// POST /api/v1/onboarding
func (h *Handler) Onboard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
		return
	}
	result, err := h.service.Onboard(c.Request.Context(), user.Email, req.Goal)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// ==================== 向导 API ====================

// GetOptions 获取向导可选项
// GET /api/v1/campaign-wizard/options
func (h *Handler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": OptionsResponse{
		Industries:  Industries,
		Objectives:  Objectives,
		Tones:       Tones,
		Platforms:   Platforms,
		Frequencies: Frequencies,
		Durations:   Durations,
	}})
}

// StartWizard 创建向导会话
// POST /api/v1/campaign-wizard
func (h *Handler) StartWizard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req StartWizardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
			return
		}
	}

	var campaignID *uuid.UUID
	if req.CampaignID != "" {
		id := uuid.MustParse(req.CampaignID)
		campaignID = &id
	}

	sess, err := h.wizard.Start(c.Request.Context(), user.UserID, campaignID)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	h.respondSession(c, http.StatusCreated, sess)
}

// GetWizard 获取向导会话
// GET /api/v1/campaign-wizard/:sid
func (h *Handler) GetWizard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	sess, err := h.wizard.Get(c.Request.Context(), user.UserID, c.Param("sid"))
	h.respondSessionOrError(c, sess, err)
}

// PatchWizard 更新向导表单
// PATCH /api/v1/campaign-wizard/:sid
func (h *Handler) PatchWizard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var patch FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
		return
	}
	sess, err := h.wizard.Patch(c.Request.Context(), user.UserID, c.Param("sid"), patch)
	h.respondSessionOrError(c, sess, err)
}

// ToggleWizardField 切换多选字段
// POST /api/v1/campaign-wizard/:sid/toggle
func (h *Handler) ToggleWizardField(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, h.logger, apierror.ErrInvalidRequest.WithMessage(err.Error()))
		return
	}
	sess, err := h.wizard.Toggle(c.Request.Context(), user.UserID, c.Param("sid"), req.Field, req.Value)
	h.respondSessionOrError(c, sess, err)
}

// NextStep 前进一步
// POST /api/v1/campaign-wizard/:sid/next
func (h *Handler) NextStep(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	sess, err := h.wizard.Next(c.Request.Context(), user.UserID, c.Param("sid"))
	h.respondSessionOrError(c, sess, err)
}

// PrevStep 后退一步
// POST /api/v1/campaign-wizard/:sid/back
func (h *Handler) PrevStep(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	sess, err := h.wizard.Back(c.Request.Context(), user.UserID, c.Param("sid"))
	h.respondSessionOrError(c, sess, err)
}

// ResetWizard 重置向导
// POST /api/v1/campaign-wizard/:sid/reset
func (h *Handler) ResetWizard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	sess, err := h.wizard.Reset(c.Request.Context(), user.UserID, c.Param("sid"))
	h.respondSessionOrError(c, sess, err)
}

// SubmitWizard 保存活动
// POST /api/v1/campaign-wizard/:sid/submit
func (h *Handler) SubmitWizard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	campaign, err := h.wizard.Submit(c.Request.Context(), user.UserID, c.Param("sid"))
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": campaign})
}

func (h *Handler) respondSessionOrError(c *gin.Context, sess *Session, err error) {
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	h.respondSession(c, http.StatusOK, sess)
}

func (h *Handler) respondSession(c *gin.Context, status int, sess *Session) {
	var resp WizardResponse
	resp.FromSession(sess)
	c.JSON(status, gin.H{"data": resp})
}
