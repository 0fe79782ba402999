package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsRepository 统计查询
type StatsRepository interface {
	// CountSince 统计 created_at >= since 的行数，model 为任一带 created_at 的模型
	CountSince(ctx context.Context, model interface{}, since time.Time) (int64, error)
}

type statsRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStatsRepository 创建 StatsRepository 实例
func NewStatsRepository(db *gorm.DB, logger *zap.Logger) StatsRepository {
	return &statsRepositoryImpl{
		db:     db,
		logger: logger.Named("stats_repository"),
	}
}

// CountSince 按创建时间计数
func (r *statsRepositoryImpl) CountSince(ctx context.Context, model interface{}, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(model).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, WrapError(err, fmt.Sprintf("count %T since", model))
	}
	return count, nil
}
