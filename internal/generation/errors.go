package generation

import (
	"net/http"

	"github.com/houzhh15/autopilot/internal/apierror"
)

// 预定义错误
var (
	ErrMissingFields  = apierror.New("MISSING_FIELDS", "Missing required fields", http.StatusBadRequest)
	ErrNotConfigured  = apierror.New("LLM_NOT_CONFIGURED", "OpenAI API key not configured", http.StatusServiceUnavailable)
	ErrProviderFailed = apierror.New("LLM_PROVIDER_ERROR", "Generation failed", http.StatusBadGateway)
	ErrInsertFailed   = apierror.New("POST_INSERT_FAILED", "Database insert failed", http.StatusInternalServerError)
)
