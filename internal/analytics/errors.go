package analytics

import (
	"net/http"

	"github.com/houzhh15/autopilot/internal/apierror"
)

// 预定义错误
var (
	ErrInvalidReportType = apierror.New("INVALID_REPORT_TYPE", "Report type must be one of: daily, weekly, monthly", http.StatusBadRequest)
	ErrReportFailed      = apierror.New("REPORT_FAILED", "Failed to generate report", http.StatusInternalServerError)
)
