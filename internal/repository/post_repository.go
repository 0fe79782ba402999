package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/houzhh15/autopilot/internal/models"
)

// PostFilter 帖子查询条件
type PostFilter struct {
	CampaignID *uuid.UUID
	Order      string // "asc" or "desc"，按 created_at
}

// PostRepository 帖子仓储接口
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
}

type postRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostRepository 创建 PostRepository 实例
func NewPostRepository(db *gorm.DB, logger *zap.Logger) PostRepository {
	return &postRepositoryImpl{
		db:     db,
		logger: logger.Named("post_repository"),
	}
}

// Create 创建帖子
func (r *postRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.logger.Error("Failed to create post",
			zap.String("campaign_id", post.CampaignID.String()),
			zap.Error(err),
		)
		return WrapError(err, "create post")
	}
	r.logger.Info("Post created",
		zap.String("id", post.ID.String()),
		zap.String("campaign_id", post.CampaignID.String()),
		zap.String("platform", post.Platform),
	)
	return nil
}

// List 查询帖子
func (r *postRepositoryImpl) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Scopes(
			CampaignScope(filter.CampaignID),
			OrderScope("created_at", filter.Order),
		).
		Find(&posts).Error
	if err != nil {
		return nil, WrapError(err, "list posts")
	}
	return posts, nil
}

// Count 统计帖子数量
func (r *postRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, WrapError(err, "count posts")
	}
	return count, nil
}
