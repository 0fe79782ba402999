package campaign

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
	"github.com/houzhh15/autopilot/pkg/database"
)

// Service 活动服务
type Service struct {
	db        *gorm.DB
	tenants   repository.TenantRepository
	campaigns repository.CampaignRepository
	publisher event.Publisher
	logger    *zap.Logger
}

// NewService 创建活动服务实例
func NewService(db *gorm.DB, tenants repository.TenantRepository, campaigns repository.CampaignRepository, publisher event.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{
		db:        db,
		tenants:   tenants,
		campaigns: campaigns,
		publisher: publisher,
		logger:    logger.Named("campaign_service"),
	}
}

// List 查询活动，默认按创建时间倒序
func (s *Service) List(ctx context.Context, opts models.ListOptions) ([]*models.Campaign, error) {
	campaigns, err := s.campaigns.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// Get 查询单个活动
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// Create 创建活动
// 使用第一个租户，没有租户时以品牌名（缺省 "My Brand"）新建
func (s *Service) Create(ctx context.Context, form Form) (*models.Campaign, error) {
	if !form.Complete() {
		return nil, ErrMissingFields
	}

	c := &models.Campaign{
		Name:      form.Name,
		Objective: form.Objective,
		Details:   form.Details(),
		Status:    models.CampaignStatusActive,
	}

	err := database.WithTransactionCtx(ctx, s.db, func(tx *gorm.DB) error {
		tenantID, err := s.resolveTenant(ctx, tx, form.BrandName)
		if err != nil {
			return err
		}
		c.TenantID = tenantID
		if err := s.campaigns.WithTx(tx).Create(ctx, c); err != nil {
			return ErrSaveFailed.WithError(err).WithMessage("Failed to create campaign: " + repository.ErrorDetail(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, event.TypeCampaignCreated, c)
	return c, nil
}

// resolveTenant 返回第一个租户 ID，不存在时创建
func (s *Service) resolveTenant(ctx context.Context, tx *gorm.DB, brandName string) (uuid.UUID, error) {
	tenants := s.tenants.WithTx(tx)
	first, err := tenants.FindFirst(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve tenant: %w", err)
	}
	if first != nil {
		return first.ID, nil
	}

	tenant := &models.Tenant{BrandName: brandName}
	if err := tenants.Create(ctx, tenant); err != nil {
		return uuid.Nil, ErrTenantCreate.WithError(err).WithMessage("Failed to create tenant: " + repository.ErrorDetail(err))
	}
	return tenant.ID, nil
}

// Update 更新名称、目标和详情
func (s *Service) Update(ctx context.Context, id uuid.UUID, form Form) (*models.Campaign, error) {
	if !form.Complete() {
		return nil, ErrMissingFields
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = form.Name
	c.Objective = form.Objective
	c.Details = form.Details()

	if err := s.campaigns.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, ErrSaveFailed.WithError(err).WithMessage("Failed to update: " + repository.ErrorDetail(err))
	}

	s.emit(ctx, event.TypeCampaignUpdated, c)
	return c, nil
}

// Duplicate 复制活动，新活动名为 "<名称或目标> (Copy)"，状态为暂停
func (s *Service) Duplicate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dup := &models.Campaign{
		TenantID:  src.TenantID,
		Name:      src.DisplayName() + " (Copy)",
		Objective: src.Objective,
		Details:   src.Details,
		Status:    models.CampaignStatusPaused,
	}
	if err := s.campaigns.Create(ctx, dup); err != nil {
		return nil, ErrSaveFailed.WithError(err)
	}

	s.emit(ctx, event.TypeCampaignCreated, dup)
	return dup, nil
}

// Delete 删除活动
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.campaigns.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return fmt.Errorf("delete campaign: %w", err)
	}
	s.emit(ctx, event.TypeCampaignDeleted, &models.Campaign{ID: id})
	return nil
}

// ToggleStatus 在 active 与 paused 之间切换
func (s *Service) ToggleStatus(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := c.Status.Toggle()
	if err := s.campaigns.UpdateStatus(ctx, id, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("toggle campaign status: %w", err)
	}
	c.Status = next

	s.logger.Info("Campaign status toggled",
		zap.String("id", id.String()),
		zap.String("status", string(next)),
	)
	s.emit(ctx, event.TypeCampaignUpdated, c)
	return c, nil
}

// OnboardingResult 新手引导结果
type OnboardingResult struct {
	Tenant   *models.Tenant   `json:"tenant"`
	Campaign *models.Campaign `json:"campaign"`
}

// Onboard 以邮箱前缀为品牌名创建租户，并创建目标为 goal 的活动
func (s *Service) Onboard(ctx context.Context, email, goal string) (*OnboardingResult, error) {
	if !slices.Contains(Objectives, goal) {
		return nil, ErrInvalidGoal
	}

	result := &OnboardingResult{
		Tenant: &models.Tenant{BrandName: BrandFromEmail(email)},
	}
	err := database.WithTransactionCtx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.tenants.WithTx(tx).Create(ctx, result.Tenant); err != nil {
			return ErrTenantCreate.WithError(err)
		}
		result.Campaign = &models.Campaign{
			TenantID:  result.Tenant.ID,
			Objective: goal,
			Status:    models.CampaignStatusActive,
		}
		if err := s.campaigns.WithTx(tx).Create(ctx, result.Campaign); err != nil {
			return ErrSaveFailed.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, event.TypeCampaignCreated, result.Campaign)
	return result, nil
}

// BrandFromEmail 取邮箱 @ 前的部分，为空时返回默认品牌名
func BrandFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return models.DefaultBrandName
	}
	return local
}

func (s *Service) emit(ctx context.Context, t event.Type, c *models.Campaign) {
	tenantID := ""
	if c.TenantID != uuid.Nil {
		tenantID = c.TenantID.String()
	}
	event.Emit(ctx, s.publisher, s.logger, t, c.ID.String(), tenantID, map[string]string{
		"name":      c.Name,
		"objective": c.Objective,
		"status":    string(c.Status),
	})
}
