package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/houzhh15/autopilot/internal/models"
)

// CampaignRepository 活动仓储接口
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	// Update 更新名称、目标和详情
	Update(ctx context.Context, campaign *models.Campaign) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CampaignStatus) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, opts models.ListOptions) ([]*models.Campaign, error)
	// ListAll 不分页，用于统计
	ListAll(ctx context.Context) ([]*models.Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) CampaignRepository
}

type campaignRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCampaignRepository 创建 CampaignRepository 实例
func NewCampaignRepository(db *gorm.DB, logger *zap.Logger) CampaignRepository {
	return &campaignRepositoryImpl{
		db:     db,
		logger: logger.Named("campaign_repository"),
	}
}

// WithTx 返回绑定到事务的仓储
func (r *campaignRepositoryImpl) WithTx(tx *gorm.DB) CampaignRepository {
	return &campaignRepositoryImpl{db: tx, logger: r.logger}
}

// Create 创建活动
func (r *campaignRepositoryImpl) Create(ctx context.Context, campaign *models.Campaign) error {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		r.logger.Error("Failed to create campaign",
			zap.String("name", campaign.Name),
			zap.Error(err),
		)
		return WrapError(err, "create campaign")
	}
	r.logger.Info("Campaign created",
		zap.String("id", campaign.ID.String()),
		zap.String("tenant_id", campaign.TenantID.String()),
		zap.String("objective", campaign.Objective),
	)
	return nil
}

// Update 更新活动
func (r *campaignRepositoryImpl) Update(ctx context.Context, campaign *models.Campaign) error {
	result := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", campaign.ID).
		Updates(map[string]interface{}{
			"name":       campaign.Name,
			"objective":  campaign.Objective,
			"details":    campaign.Details,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return WrapError(result.Error, "update campaign")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus 更新活动状态
func (r *campaignRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CampaignStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return WrapError(result.Error, "update campaign status")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID 根据 ID 查询活动
func (r *campaignRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		return nil, WrapError(err, "find campaign by id")
	}
	return &campaign, nil
}

// List 分页查询活动
func (r *campaignRepositoryImpl) List(ctx context.Context, opts models.ListOptions) ([]*models.Campaign, error) {
	opts.Normalize()
	var campaigns []*models.Campaign
	err := r.db.WithContext(ctx).
		Scopes(
			OrderScope(opts.OrderBy, opts.Order),
			PaginationScope(opts.Limit, opts.Offset),
		).
		Find(&campaigns).Error
	if err != nil {
		return nil, WrapError(err, "list campaigns")
	}
	return campaigns, nil
}

// ListAll 查询全部活动
func (r *campaignRepositoryImpl) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&campaigns).Error; err != nil {
		return nil, WrapError(err, "list all campaigns")
	}
	return campaigns, nil
}

// Delete 删除活动（物理删除）
func (r *campaignRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Campaign{}, "id = ?", id)
	if result.Error != nil {
		return WrapError(result.Error, "delete campaign")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.logger.Info("Campaign deleted", zap.String("id", id.String()))
	return nil
}

// Count 统计活动数量
func (r *campaignRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Campaign{}).Count(&count).Error; err != nil {
		return 0, WrapError(err, "count campaigns")
	}
	return count, nil
}
