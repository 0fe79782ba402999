package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/houzhh15/autopilot/internal/models"
)

// LeadRepository 线索仓储接口
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	List(ctx context.Context, opts models.ListOptions) ([]*models.Lead, error)
	Count(ctx context.Context) (int64, error)
}

type leadRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLeadRepository 创建 LeadRepository 实例
func NewLeadRepository(db *gorm.DB, logger *zap.Logger) LeadRepository {
	return &leadRepositoryImpl{
		db:     db,
		logger: logger.Named("lead_repository"),
	}
}

// Create 保存线索
func (r *leadRepositoryImpl) Create(ctx context.Context, lead *models.Lead) error {
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		r.logger.Error("Failed to create lead",
			zap.String("source", lead.Source),
			zap.Error(err),
		)
		return WrapError(err, "create lead")
	}
	r.logger.Info("Lead created",
		zap.String("id", lead.ID.String()),
		zap.String("source", lead.Source),
	)
	return nil
}

// List 分页查询线索
func (r *leadRepositoryImpl) List(ctx context.Context, opts models.ListOptions) ([]*models.Lead, error) {
	opts.Normalize()
	var leads []*models.Lead
	err := r.db.WithContext(ctx).
		Scopes(
			OrderScope(opts.OrderBy, opts.Order),
			PaginationScope(opts.Limit, opts.Offset),
		).
		Find(&leads).Error
	if err != nil {
		return nil, WrapError(err, "list leads")
	}
	return leads, nil
}

// Count 统计线索数量
func (r *leadRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Lead{}).Count(&count).Error; err != nil {
		return 0, WrapError(err, "count leads")
	}
	return count, nil
}
