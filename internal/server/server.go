package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/config"
)

// Server HTTP 服务
type Server struct {
	cfg     config.ServerConfig
	srv     *http.Server
	limiter *RateLimiter
	logger  *zap.Logger
}

// New 创建 HTTP 服务，限流关闭时 limiter 为空
func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger, _ = zap.NewProduction()
		deps.Logger = logger
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	var limiter *RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	}

	return &Server{
		cfg: cfg.Server,
		srv: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      NewRouter(cfg, deps, limiter),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		limiter: limiter,
		logger:  logger.Named("server"),
	}
}

// Handler 返回路由，供测试直接调用
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run 启动服务并阻塞，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var cleanup <-chan time.Time
	if s.limiter != nil {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		cleanup = ticker.C
	}

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-cleanup:
			if n := s.limiter.Cleanup(); n > 0 {
				s.logger.Debug("Rate limiter visitors evicted", zap.Int("count", n))
			}
		case <-ctx.Done():
			return s.shutdown()
		}
	}
}

func (s *Server) shutdown() error {
	s.logger.Info("Shutting down server...")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}
