package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/houzhh15/autopilot/internal/cache"
	"github.com/houzhh15/autopilot/internal/config"
	"github.com/houzhh15/autopilot/internal/logging"
	"github.com/houzhh15/autopilot/pkg/database"
)

// cachePrefix Redis 键前缀
const cachePrefix = "autopilot:"

// loadConfig 加载 .env 与配置文件并校验
func loadConfig() (*config.Loader, *config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, nil, err
	}
	loader := config.NewLoader()
	cfg, err := loader.Load(configPaths...)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	return loader, cfg, nil
}

// newLogger 按配置创建日志
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// openDB 连接 PostgreSQL
func openDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewPostgresDB(&cfg.Database, logger.Named("database"))
	if err != nil {
		return nil, err
	}
	logger.Info("PostgreSQL connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
	)
	return db, nil
}

// cacheBackend 缓存存储及其清理函数，redis 关闭时使用进程内存
type cacheBackend struct {
	store cache.Store
	redis *cache.RedisStore
	close func() error
}

func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*cacheBackend, error) {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, using in-memory cache")
		return &cacheBackend{store: cache.NewMemoryStore(), close: func() error { return nil }}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	store := cache.NewRedisStore(client, cachePrefix, logger)
	logger.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr))
	return &cacheBackend{store: store, redis: store, close: client.Close}, nil
}
