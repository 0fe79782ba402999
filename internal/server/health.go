package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker 依赖健康检查
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// DependencyStatus 单个依赖的检查结果
type DependencyStatus struct {
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// HealthStatus 整体健康状态
type HealthStatus struct {
	Status       string                      `json:"status"`
	Version      string                      `json:"version"`
	CheckedAt    time.Time                   `json:"checked_at"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// CheckHealth 依次检查全部依赖
func CheckHealth(ctx context.Context, version string, checkers ...Checker) HealthStatus {
	status := HealthStatus{
		Status:       "healthy",
		Version:      version,
		CheckedAt:    time.Now().UTC(),
		Dependencies: make(map[string]DependencyStatus, len(checkers)),
	}
	for _, ch := range checkers {
		start := time.Now()
		err := ch.Check(ctx)
		dep := DependencyStatus{Healthy: err == nil, Latency: time.Since(start).String()}
		if err != nil {
			dep.Error = err.Error()
			status.Status = "unhealthy"
		}
		status.Dependencies[ch.Name()] = dep
	}
	return status
}

// healthHandler 全部依赖健康时返回 200，否则 503
func healthHandler(version string, timeout time.Duration, checkers ...Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		status := CheckHealth(ctx, version, checkers...)
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
