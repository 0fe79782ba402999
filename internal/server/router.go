package server

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/analytics"
	"github.com/houzhh15/autopilot/internal/campaign"
	"github.com/houzhh15/autopilot/internal/config"
	"github.com/houzhh15/autopilot/internal/function"
	"github.com/houzhh15/autopilot/internal/generation"
	"github.com/houzhh15/autopilot/internal/lead"
	"github.com/houzhh15/autopilot/internal/settings"
	"github.com/houzhh15/autopilot/pkg/auth"
)

// Handlers 各业务模块的 HTTP 处理器
type Handlers struct {
	Campaign   *campaign.Handler
	Lead       *lead.Handler
	Generation *generation.Handler
	Analytics  *analytics.Handler
	Settings   *settings.Handler
}

// Deps 路由依赖
type Deps struct {
	Version  string
	Handlers Handlers
	Tokens   *auth.TokenManager
	Checkers []Checker
	// Registry 为空时使用 Prometheus 默认注册表
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// NewRouter 组装全部路由：
//   - /health, /metrics
//   - /functions/v1/* 公开函数端点，固定跨域头并按 IP 限流
//   - /api/v1/* JWT 认证的 REST 接口
func NewRouter(cfg *config.Config, deps Deps, limiter *RateLimiter) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	// 未配置代理时 ClientIP 只取连接地址，忽略客户端伪造的转发头
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Error("Invalid trusted proxies, ignoring forwarded headers", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.TrustedPlatform = cfg.Server.TrustedPlatform
	router.Use(RequestID(), Recovery(logger), AccessLog(logger), apiCORS(cfg.CORS))

	if cfg.Metrics.Enabled {
		var (
			reg      prometheus.Registerer = prometheus.DefaultRegisterer
			gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
		)
		if deps.Registry != nil {
			reg, gatherer = deps.Registry, deps.Registry
		}
		metrics := NewHTTPMetrics()
		metrics.Register(reg)
		router.Use(metrics.Middleware())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/health", healthHandler(deps.Version, 5*time.Second, deps.Checkers...))

	fn := router.Group("/functions/v1", function.CORS())
	if limiter != nil {
		fn.Use(limiter.Middleware())
	}
	if h := deps.Handlers.Lead; h != nil {
		h.RegisterFunctions(fn)
	}
	if h := deps.Handlers.Generation; h != nil {
		h.RegisterFunctions(fn)
	}

	api := router.Group("/api/v1", auth.Middleware(deps.Tokens))
	if h := deps.Handlers.Campaign; h != nil {
		h.RegisterRoutes(api)
	}
	if h := deps.Handlers.Lead; h != nil {
		h.RegisterRoutes(api)
	}
	if h := deps.Handlers.Generation; h != nil {
		h.RegisterRoutes(api)
	}
	if h := deps.Handlers.Analytics; h != nil {
		h.RegisterRoutes(api)
	}
	if h := deps.Handlers.Settings; h != nil {
		h.RegisterRoutes(api)
	}

	return router
}

// apiCORS 只作用于 /api/ 路径，挂在全局以便未注册的 OPTIONS 预检也能命中
func apiCORS(cfg config.CORSConfig) gin.HandlerFunc {
	handler := cors.New(corsConfig(cfg))
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			handler(c)
		}
	}
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", RequestIDHeader)
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.ExposeHeaders = []string{RequestIDHeader}
	c.MaxAge = 12 * time.Hour
	return c
}
