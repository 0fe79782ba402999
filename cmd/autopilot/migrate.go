package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/config"
	"github.com/houzhh15/autopilot/migrations"
	"github.com/houzhh15/autopilot/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withMigrator(func(m *database.Migrator, logger *zap.Logger) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: withMigrator(func(m *database.Migrator, logger *zap.Logger) error {
				if err := m.Down(); err != nil {
					return err
				}
				logger.Info("Rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			RunE: withMigrator(func(m *database.Migrator, logger *zap.Logger) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Printf("version: %d, dirty: %t\n", version, dirty)
				return nil
			}),
		},
	)
	return cmd
}

func withMigrator(run func(m *database.Migrator, logger *zap.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logs, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logs.Close()

		m, closeDB, err := newMigrator(cfg, logs.Logger)
		if err != nil {
			return err
		}
		defer closeDB()
		return run(m, logs.Logger)
	}
}

// newMigrator 迁移使用独立连接，迁移驱动关闭时会一并关闭该连接
func newMigrator(cfg *config.Config, logger *zap.Logger) (*database.Migrator, func(), error) {
	db, err := openDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return database.NewMigrator(sqlDB, migrations.FS, logger), func() { _ = sqlDB.Close() }, nil
}

// migrateUp serve 启动时自动迁移
func migrateUp(cfg *config.Config, logger *zap.Logger) error {
	m, closeDB, err := newMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := m.Up(); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
