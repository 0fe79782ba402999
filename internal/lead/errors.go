package lead

import (
	"net/http"

	"github.com/houzhh15/autopilot/internal/apierror"
)

// 预定义错误
var (
	ErrEmailRequired = apierror.New("EMAIL_REQUIRED", "Email is required", http.StatusBadRequest)
	ErrInvalidTenant = apierror.New("INVALID_TENANT", "Invalid tenantId", http.StatusBadRequest)
	ErrSaveFailed    = apierror.New("LEAD_SAVE_FAILED", "Failed to save lead", http.StatusInternalServerError)
)
