package campaign

import (
	"net/http"

	"github.com/houzhh15/autopilot/internal/apierror"
)

// 预定义错误
var (
	// ErrCampaignNotFound 活动不存在
	ErrCampaignNotFound = apierror.New("CAMPAIGN_NOT_FOUND", "Campaign not found", http.StatusNotFound)

	// ErrMissingFields 缺少名称或目标
	ErrMissingFields = apierror.New("MISSING_FIELDS", "Campaign name and objective are required", http.StatusBadRequest)

	// ErrInvalidGoal 引导目标无效
	ErrInvalidGoal = apierror.New("INVALID_GOAL", "Goal must be one of: traffic, leads, sales, authority", http.StatusBadRequest)

	// ErrSessionNotFound 向导会话不存在或已过期
	ErrSessionNotFound = apierror.New("WIZARD_SESSION_NOT_FOUND", "Wizard session not found or expired", http.StatusNotFound)

	// ErrWizardState 当前步骤不允许该操作
	ErrWizardState = apierror.New("WIZARD_STATE_INVALID", "Operation not allowed in current wizard step", http.StatusConflict)

	// ErrSubmitInProgress 同一会话正在保存
	ErrSubmitInProgress = apierror.New("WIZARD_SUBMIT_IN_PROGRESS", "Campaign is already being saved", http.StatusConflict)

	// ErrTenantCreate 创建租户失败
	ErrTenantCreate = apierror.New("TENANT_CREATE_FAILED", "Failed to create tenant", http.StatusInternalServerError)

	// ErrSaveFailed 保存活动失败
	ErrSaveFailed = apierror.New("CAMPAIGN_SAVE_FAILED", "Failed to save campaign", http.StatusInternalServerError)
)

// ErrInvalidRequest 请求参数无效
var ErrInvalidRequest = apierror.ErrInvalidRequest
