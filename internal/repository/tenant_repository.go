package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/houzhh15/autopilot/internal/models"
)

// TenantRepository 租户仓储接口
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	// FindFirst 返回最早创建的租户，没有租户时返回 nil, nil
	FindFirst(ctx context.Context) (*models.Tenant, error)
	WithTx(tx *gorm.DB) TenantRepository
}

// tenantRepositoryImpl TenantRepository 实现
type tenantRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTenantRepository 创建 TenantRepository 实例
func NewTenantRepository(db *gorm.DB, logger *zap.Logger) TenantRepository {
	return &tenantRepositoryImpl{
		db:     db,
		logger: logger.Named("tenant_repository"),
	}
}

// WithTx 返回绑定到事务的仓储
func (r *tenantRepositoryImpl) WithTx(tx *gorm.DB) TenantRepository {
	return &tenantRepositoryImpl{db: tx, logger: r.logger}
}

// Create 创建租户
func (r *tenantRepositoryImpl) Create(ctx context.Context, tenant *models.Tenant) error {
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		r.logger.Error("Failed to create tenant",
			zap.String("brand_name", tenant.BrandName),
			zap.Error(err),
		)
		return WrapError(err, "create tenant")
	}
	r.logger.Info("Tenant created",
		zap.String("id", tenant.ID.String()),
		zap.String("brand_name", tenant.BrandName),
	)
	return nil
}

// FindByID 根据 ID 查询租户
func (r *tenantRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, WrapError(err, "find tenant by id")
	}
	return &tenant, nil
}

// FindFirst 查询第一个租户
func (r *tenantRepositoryImpl) FindFirst(ctx context.Context) (*models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.WithContext(ctx).
		Order("created_at asc").
		Limit(1).
		Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("find first tenant: %w", err)
	}
	if len(tenants) == 0 {
		return nil, nil
	}
	return &tenants[0], nil
}
