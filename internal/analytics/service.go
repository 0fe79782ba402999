package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/houzhh15/autopilot/internal/cache"
	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
)

// CacheTag 统计缓存的失效标签
const CacheTag = "analytics"

// recentReports 管理员页面展示的报告数量
const recentReports = 10

// Repositories 统计依赖的仓储
type Repositories struct {
	Campaigns     repository.CampaignRepository
	Leads         repository.LeadRepository
	Posts         repository.PostRepository
	Subscriptions repository.SubscriptionRepository
	Reports       repository.ReportRepository
	Stats         repository.StatsRepository
}

// AdminAnalytics 管理员统计及最近报告
type AdminAnalytics struct {
	*AdminReport
	Reports []*models.Report `json:"reports"`
}

// Service 统计服务
type Service struct {
	repos     Repositories
	cache     cache.Store
	ttl       time.Duration
	publisher event.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService 创建统计服务，store 为 nil 时不缓存
func NewService(repos Repositories, store cache.Store, ttl time.Duration, publisher event.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{
		repos:     repos,
		cache:     store,
		ttl:       ttl,
		publisher: publisher,
		logger:    logger.Named("analytics_service"),
		now:       time.Now,
	}
}

// Dashboard 活动、线索、帖子计数和最近 5 个活动
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return cache.Remember(ctx, s.cache, "analytics:dashboard", s.ttl, CacheTag, s.loadDashboard)
}

func (s *Service) loadDashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Campaigns, err = s.repos.Campaigns.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Leads, err = s.repos.Leads.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Posts, err = s.repos.Posts.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		opts := models.DefaultListOptions()
		opts.Limit = 5
		d.RecentCampaigns, err = s.repos.Campaigns.List(gctx, opts)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return d, nil
}

// CampaignReport 单个活动或全部活动（campaignID 为 nil）的报告
func (s *Service) CampaignReport(ctx context.Context, campaignID *uuid.UUID) (*CampaignReport, error) {
	key := "analytics:report:all"
	if campaignID != nil {
		key = "analytics:report:" + campaignID.String()
	}
	return cache.Remember(ctx, s.cache, key, s.ttl, CacheTag, func(ctx context.Context) (*CampaignReport, error) {
		posts, err := s.repos.Posts.List(ctx, repository.PostFilter{CampaignID: campaignID, Order: "asc"})
		if err != nil {
			return nil, fmt.Errorf("load report posts: %w", err)
		}
		return BuildCampaignReport(posts), nil
	})
}

// Admin 管理员统计，四个数据集并发加载
func (s *Service) Admin(ctx context.Context) (*AdminAnalytics, error) {
	return cache.Remember(ctx, s.cache, "analytics:admin", s.ttl, CacheTag, s.loadAdmin)
}

func (s *Service) loadAdmin(ctx context.Context) (*AdminAnalytics, error) {
	var (
		posts     []*models.Post
		campaigns []*models.Campaign
		subs      []*models.Subscription
		reports   []*models.Report
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.repos.Posts.List(gctx, repository.PostFilter{Order: "asc"})
		return err
	})
	g.Go(func() (err error) {
		campaigns, err = s.repos.Campaigns.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		subs, err = s.repos.Subscriptions.ListActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		reports, err = s.repos.Reports.ListRecent(gctx, recentReports)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load admin analytics: %w", err)
	}

	if reports == nil {
		reports = []*models.Report{}
	}
	return &AdminAnalytics{
		AdminReport: BuildAdminReport(posts, campaigns, subs),
		Reports:     reports,
	}, nil
}

// reportWindow 报告统计的时间窗口
func reportWindow(t models.ReportType) time.Duration {
	switch t {
	case models.ReportWeekly:
		return 7 * 24 * time.Hour
	case models.ReportMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// GenerateReport 统计窗口内新增数据并保存报告
func (s *Service) GenerateReport(ctx context.Context, reportType models.ReportType) (*models.Report, error) {
	if !reportType.IsValid() {
		return nil, ErrInvalidReportType
	}

	since := s.now().UTC().Add(-reportWindow(reportType))
	var (
		posts                 []*models.Post
		campaigns, leads, sub int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.repos.Posts.List(gctx, repository.PostFilter{Order: "asc"})
		return err
	})
	g.Go(func() (err error) {
		campaigns, err = s.repos.Stats.CountSince(gctx, &models.Campaign{}, since)
		return err
	})
	g.Go(func() (err error) {
		leads, err = s.repos.Stats.CountSince(gctx, &models.Lead{}, since)
		return err
	})
	g.Go(func() (err error) {
		sub, err = s.repos.Stats.CountSince(gctx, &models.Subscription{}, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, ErrReportFailed.WithError(err)
	}

	newPosts, cost := 0, 0.0
	for _, p := range posts {
		if p.CreatedAt.Before(since) {
			continue
		}
		newPosts++
		cost += CostOpenAIText
		if p.HasImage() {
			cost += CostDalleImage
		}
	}

	report := &models.Report{
		ReportType: reportType,
		Summary: models.JSONMap{
			"period_start":      since.Format(time.RFC3339),
			"new_posts":         newPosts,
			"new_campaigns":     campaigns,
			"new_leads":         leads,
			"new_subscriptions": sub,
			"total_api_cost":    fmt.Sprintf("%.2f", cost),
		},
	}
	if err := s.repos.Reports.Create(ctx, report); err != nil {
		return nil, ErrReportFailed.WithError(err)
	}

	event.Emit(ctx, s.publisher, s.logger, event.TypeReportGenerated, report.ID.String(), "", map[string]string{
		"type": string(reportType),
	})
	return report, nil
}

// ListReports 最近的报告
func (s *Service) ListReports(ctx context.Context) ([]*models.Report, error) {
	reports, err := s.repos.Reports.ListRecent(ctx, recentReports)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
