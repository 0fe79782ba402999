package generation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
)

// GenerateRequest 生成请求，四个字段均为必填
type GenerateRequest struct {
	BrandName  string `json:"brandName"`
	Platform   string `json:"platform"`
	Objective  string `json:"objective"`
	CampaignID string `json:"campaignId"`
}

func (r GenerateRequest) complete() bool {
	return r.BrandName != "" && r.Platform != "" && r.Objective != "" && r.CampaignID != ""
}

// Service 帖子生成服务
type Service struct {
	generator Generator
	posts     repository.PostRepository
	publisher event.Publisher
	logger    *zap.Logger
}

// NewService 创建生成服务，generator 为 nil 表示未配置密钥
func NewService(generator Generator, posts repository.PostRepository, publisher event.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{
		generator: generator,
		posts:     posts,
		publisher: publisher,
		logger:    logger.Named("generation_service"),
	}
}

// Generate 生成帖子内容并保存为草稿
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*models.Post, error) {
	if !req.complete() {
		return nil, ErrMissingFields
	}
	if s.generator == nil {
		return nil, ErrNotConfigured
	}

	prompt := BuildPrompt(req.Platform, req.BrandName, req.Objective)
	content, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, ErrProviderFailed.WithError(err).WithMessage(err.Error())
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return nil, ErrInsertFailed.WithError(err).WithMessage("Database insert failed: invalid campaignId " + req.CampaignID)
	}

	post := &models.Post{
		CampaignID: campaignID,
		Platform:   req.Platform,
		Content:    content,
		Status:     models.PostStatusDraft,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, ErrInsertFailed.WithError(err).WithMessage("Database insert failed: " + repository.ErrorDetail(err))
	}

	s.logger.Info("Post generated",
		zap.String("id", post.ID.String()),
		zap.String("generator", s.generator.Name()),
		zap.Int("length", len(content)),
	)
	event.Emit(ctx, s.publisher, s.logger, event.TypePostGenerated, post.ID.String(), "", map[string]string{
		"campaign_id": post.CampaignID.String(),
		"platform":    post.Platform,
	})
	return post, nil
}

// ListByCampaign 按创建时间倒序查询活动的帖子
func (s *Service) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx, repository.PostFilter{CampaignID: &campaignID, Order: "desc"})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}
