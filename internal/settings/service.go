// Package settings 提供账户设置：当前套餐和社交平台连接状态
package settings

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/apierror"
	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
)

// Platform 可连接的社交平台
type Platform struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Platforms 支持的平台
var Platforms = []Platform{
	{ID: "twitter", Name: "X (Twitter)"},
	{ID: "linkedin", Name: "LinkedIn"},
	{ID: "facebook", Name: "Facebook"},
	{ID: "instagram", Name: "Instagram"},
	{ID: "tiktok", Name: "TikTok"},
	{ID: "bluesky", Name: "Bluesky"},
}

// 预定义错误
var (
	ErrUnknownPlatform = apierror.New("UNKNOWN_PLATFORM", "Unknown platform", http.StatusNotFound)
	ErrComingSoon      = apierror.ErrNotImplemented.WithMessage("Coming Soon - OAuth integration will be available in a future update")
)

// CurrentPlan 当前套餐
type CurrentPlan struct {
	PlanType     models.PlanType `json:"plan_type"`
	Name         string          `json:"name"`
	Price        int64           `json:"price"`
	MonthlyLimit int             `json:"monthly_limit,omitempty"`
}

// Connection 平台及连接状态
type Connection struct {
	Platform
	Connected bool `json:"connected"`
}

// Service 设置服务
type Service struct {
	subs        repository.SubscriptionRepository
	connections repository.ConnectionRepository
	publisher   event.Publisher
	logger      *zap.Logger
}

// NewService 创建设置服务
func NewService(subs repository.SubscriptionRepository, connections repository.ConnectionRepository, publisher event.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{
		subs:        subs,
		connections: connections,
		publisher:   publisher,
		logger:      logger.Named("settings_service"),
	}
}

// Plan 用户有效订阅对应的套餐，没有订阅时为 free
func (s *Service) Plan(ctx context.Context, userID string) (*CurrentPlan, error) {
	sub, err := s.subs.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if sub == nil || sub.Plan == nil {
		return &CurrentPlan{PlanType: models.PlanFree, Name: models.PlanFree.DisplayName()}, nil
	}
	return &CurrentPlan{
		PlanType:     sub.Plan.PlanType,
		Name:         sub.Plan.PlanType.DisplayName(),
		Price:        sub.Plan.Price,
		MonthlyLimit: sub.Plan.MonthlyLimit,
	}, nil
}

// Connections 全部平台及用户的连接状态，未记录的平台视为未连接
func (s *Service) Connections(ctx context.Context, userID string) ([]Connection, error) {
	stored, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}
	state := make(map[string]bool, len(stored))
	for _, c := range stored {
		state[c.Platform] = c.Connected
	}

	out := make([]Connection, 0, len(Platforms))
	for _, p := range Platforms {
		out = append(out, Connection{Platform: p, Connected: state[p.ID]})
	}
	return out, nil
}

// Connect 尚未支持 OAuth 连接
func (s *Service) Connect(ctx context.Context, userID, platform string) error {
	if !knownPlatform(platform) {
		return ErrUnknownPlatform
	}
	return ErrComingSoon
}

// Disconnect 记录断开状态
func (s *Service) Disconnect(ctx context.Context, userID, platform string) error {
	if !knownPlatform(platform) {
		return ErrUnknownPlatform
	}
	conn := &models.PlatformConnection{UserID: userID, Platform: platform, Connected: false}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		return fmt.Errorf("disconnect %s: %w", platform, err)
	}
	s.logger.Info("Platform disconnected",
		zap.String("user_id", userID),
		zap.String("platform", platform),
	)
	event.Emit(ctx, s.publisher, s.logger, event.TypeConnectionChanged, userID, "", map[string]interface{}{
		"platform":  platform,
		"connected": false,
	})
	return nil
}

func knownPlatform(id string) bool {
	return slices.ContainsFunc(Platforms, func(p Platform) bool { return p.ID == id })
}
