package database

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// HealthChecker 数据库健康检查
type HealthChecker struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewHealthChecker 创建健康检查器，timeout 默认 2s
func NewHealthChecker(db *gorm.DB, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{db: db, timeout: timeout}
}

// Name 依赖名称
func (h *HealthChecker) Name() string {
	return "postgres"
}

// Check ping 数据库
func (h *HealthChecker) Check(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Stats 连接池统计
func (h *HealthChecker) Stats() (sql.DBStats, error) {
	sqlDB, err := h.db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}
