package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/analytics"
	"github.com/houzhh15/autopilot/internal/event"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume domain events and invalidate shared caches",
		Long: `The worker reads domain events from Kafka and clears the analytics cache
held in Redis. It requires both kafka.enabled and redis.enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Kafka.Enabled || !cfg.Redis.Enabled {
				return errors.New("worker requires kafka.enabled and redis.enabled")
			}

			logs, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logs.Close()
			logger := logs.Logger

			caches, err := openCache(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer caches.close()

			consumer, err := event.NewConsumer(event.ConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
			}, logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			logger.Info("Worker started",
				zap.String("topic", cfg.Kafka.Topic),
				zap.String("group_id", cfg.Kafka.GroupID),
			)
			return consumer.Run(ctx, analytics.InvalidationHandler(caches.store, logger))
		},
	}
}
