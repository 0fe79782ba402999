// Package lead 处理公开表单的线索采集
package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
)

// CaptureRequest 线索采集请求
type CaptureRequest struct {
	Email    string         `json:"email"`
	Source   string         `json:"source"`
	TenantID string         `json:"tenantId"`
	Metadata models.JSONMap `json:"metadata,omitempty"`
}

// AuditRequest 维护审计表单请求
type AuditRequest struct {
	Email    string `json:"email"`
	LinkedIn string `json:"linkedin"`
	Twitter  string `json:"twitter"`
}

// Service 线索服务
type Service struct {
	tenants   repository.TenantRepository
	leads     repository.LeadRepository
	locator   Locator
	publisher event.Publisher
	logger    *zap.Logger
}

// NewService 创建线索服务，locator 可为 nil
func NewService(tenants repository.TenantRepository, leads repository.LeadRepository, locator Locator, publisher event.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{
		tenants:   tenants,
		leads:     leads,
		locator:   locator,
		publisher: publisher,
		logger:    logger.Named("lead_service"),
	}
}

// Capture 保存线索
// 来源缺省为 capture_form；未指定租户时取第一个租户，没有租户时为空
func (s *Service) Capture(ctx context.Context, req CaptureRequest, clientIP string) (*models.Lead, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	lead := &models.Lead{
		Email:    email,
		Source:   req.Source,
		Metadata: req.Metadata,
	}
	if lead.Source == "" {
		lead.Source = models.LeadSourceCaptureForm
	}

	tenantID, err := s.resolveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	lead.TenantID = tenantID

	if s.locator != nil {
		if country := s.locator.Country(clientIP); country != "" {
			if lead.Metadata == nil {
				lead.Metadata = models.JSONMap{}
			}
			lead.Metadata["country"] = country
		}
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, ErrSaveFailed.WithError(err).WithMessage("Failed to save lead: " + repository.ErrorDetail(err))
	}

	s.logger.Info("Lead captured",
		zap.String("id", lead.ID.String()),
		zap.String("source", lead.Source),
	)

	tenant := ""
	if lead.TenantID != nil {
		tenant = lead.TenantID.String()
	}
	event.Emit(ctx, s.publisher, s.logger, event.TypeLeadCaptured, lead.ID.String(), tenant, map[string]string{
		"email":  lead.Email,
		"source": lead.Source,
	})
	return lead, nil
}

// Audit 保存维护审计表单提交的线索
func (s *Service) Audit(ctx context.Context, req AuditRequest, clientIP string) (*models.Lead, error) {
	return s.Capture(ctx, CaptureRequest{
		Email:  req.Email,
		Source: models.LeadSourceMaintenanceAudit,
		Metadata: models.JSONMap{
			"linkedin": req.LinkedIn,
			"twitter":  req.Twitter,
		},
	}, clientIP)
}

// List 按创建时间倒序查询线索
func (s *Service) List(ctx context.Context, opts models.ListOptions) ([]*models.Lead, error) {
	leads, err := s.leads.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (s *Service) resolveTenant(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrInvalidTenant.WithError(err).WithMessage("Failed to save lead: invalid tenantId " + raw)
		}
		return &id, nil
	}

	first, err := s.tenants.FindFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}
	if first == nil {
		return nil, nil
	}
	return &first.ID, nil
}
