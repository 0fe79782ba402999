package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/houzhh15/autopilot/internal/models"
)

// SubscriptionRepository 订阅仓储接口
type SubscriptionRepository interface {
	// FindActiveByUser 返回用户的有效订阅（含套餐），没有时返回 nil, nil
	FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error)
	ListActive(ctx context.Context) ([]*models.Subscription, error)
}

type subscriptionRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository 创建 SubscriptionRepository 实例
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) SubscriptionRepository {
	return &subscriptionRepositoryImpl{
		db:     db,
		logger: logger.Named("subscription_repository"),
	}
}

// FindActiveByUser 查询用户有效订阅
func (r *subscriptionRepositoryImpl) FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	var subs []*models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Scopes(StatusScope(models.SubscriptionStatusActive)).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(1).
		Find(&subs).Error
	if err != nil {
		return nil, WrapError(err, "find active subscription")
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return subs[0], nil
}

// ListActive 查询全部有效订阅
func (r *subscriptionRepositoryImpl) ListActive(ctx context.Context) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Scopes(StatusScope(models.SubscriptionStatusActive)).
		Find(&subs).Error
	if err != nil {
		return nil, WrapError(err, "list active subscriptions")
	}
	return subs, nil
}
