package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/analytics"
	"github.com/houzhh15/autopilot/internal/campaign"
	"github.com/houzhh15/autopilot/internal/config"
	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/generation"
	"github.com/houzhh15/autopilot/internal/lead"
	"github.com/houzhh15/autopilot/internal/repository"
	"github.com/houzhh15/autopilot/internal/server"
	"github.com/houzhh15/autopilot/internal/settings"
	"github.com/houzhh15/autopilot/pkg/auth"
	"github.com/houzhh15/autopilot/pkg/database"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	logs, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logs.Close()
	logger := logs.Logger

	logger.Info("Autopilot starting",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
	)

	// 日志级别支持热更新
	if len(configPaths) == 0 {
		logger.Debug("No config file given, hot reload disabled")
	} else if err := loader.Watch(func(next *config.Config) {
		if err := logs.SetLevel(next.Log.Level); err != nil {
			logger.Warn("Invalid log level in reloaded config", zap.Error(err))
			return
		}
		logger.Info("Log level updated", zap.String("level", next.Log.Level))
	}); err != nil {
		logger.Warn("Config watch disabled", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg, logger); err != nil {
			return err
		}
	}

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer database.CloseDB(db, logger)

	collector := database.NewMetricsCollector(db, 15*time.Second)
	collector.Start()
	defer collector.Stop()

	caches, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer caches.close()

	var publisher event.Publisher
	if cfg.Kafka.Enabled {
		publisher = event.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info("Publishing domain events to Kafka", zap.String("topic", cfg.Kafka.Topic))
	} else {
		publisher = event.NewLocalPublisher(logger, analytics.InvalidationHandler(caches.store, logger))
	}
	defer publisher.Close()

	locator := lead.NewGeoIPLocator(cfg.GeoIP.DBPath, logger)
	defer locator.Close()

	generator, err := generation.NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("init generator: %w", err)
	}

	tenants := repository.NewTenantRepository(db, logger)
	campaigns := repository.NewCampaignRepository(db, logger)
	leads := repository.NewLeadRepository(db, logger)
	posts := repository.NewPostRepository(db, logger)
	subs := repository.NewSubscriptionRepository(db, logger)

	campaignSvc := campaign.NewService(db, tenants, campaigns, publisher, logger)
	wizardSvc := campaign.NewWizardService(campaign.NewSessionStore(caches.store, cfg.Redis.SessionTTL), campaignSvc, logger)
	leadSvc := lead.NewService(tenants, leads, locator, publisher, logger)
	generationSvc := generation.NewService(generator, posts, publisher, logger)
	analyticsSvc := analytics.NewService(analytics.Repositories{
		Campaigns:     campaigns,
		Leads:         leads,
		Posts:         posts,
		Subscriptions: subs,
		Reports:       repository.NewReportRepository(db, logger),
		Stats:         repository.NewStatsRepository(db, logger),
	}, caches.store, cfg.Redis.CacheTTL, publisher, logger)
	settingsSvc := settings.NewService(subs, repository.NewConnectionRepository(db, logger), publisher, logger)

	checkers := []server.Checker{database.NewHealthChecker(db, 2*time.Second)}
	if caches.redis != nil {
		checkers = append(checkers, caches.redis)
	}
	if cfg.Kafka.Enabled {
		checkers = append(checkers, event.NewBrokerChecker(cfg.Kafka.Brokers, 3*time.Second, logger))
	}

	srv := server.New(cfg, server.Deps{
		Version: Version,
		Handlers: server.Handlers{
			Campaign:   campaign.NewHandler(campaignSvc, wizardSvc, logger),
			Lead:       lead.NewHandler(leadSvc, logger),
			Generation: generation.NewHandler(generationSvc, logger),
			Analytics:  analytics.NewHandler(analyticsSvc, logger),
			Settings:   settings.NewHandler(settingsSvc, logger),
		},
		Tokens: auth.NewTokenManager(&auth.TokenConfig{
			Secret:    []byte(cfg.Auth.JWTSecret),
			Issuer:    cfg.Auth.Issuer,
			ExpiresIn: cfg.Auth.ExpiresIn,
		}),
		Checkers: checkers,
		Logger:   logger,
	})

	return srv.Run(ctx)
}
