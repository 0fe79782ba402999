package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// migrationsTable 迁移版本表
const migrationsTable = "autopilot_schema_migrations"

// Migrator 执行内嵌迁移脚本
//
// golang-migrate 的 postgres 驱动关闭时会关闭传入的 *sql.DB，
// 因此调用方应为迁移单独建立连接，且每个 Migrator 只执行一次操作。
type Migrator struct {
	db     *sql.DB
	source fs.FS
	logger *zap.Logger
}

// NewMigrator 创建迁移器
func NewMigrator(db *sql.DB, source fs.FS, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, source: source, logger: logger.Named("migrator")}
}

// Up 执行全部待执行迁移
func (m *Migrator) Up() error {
	return m.run(func(mg *migrate.Migrate) error {
		from, _, err := currentVersion(mg)
		if err != nil {
			return err
		}
		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
		to, _, _ := currentVersion(mg)
		m.logger.Info("Migration completed", zap.Uint("from_version", from), zap.Uint("to_version", to))
		return nil
	})
}

// Down 回滚一个版本
func (m *Migrator) Down() error {
	return m.run(func(mg *migrate.Migrate) error {
		if err := mg.Steps(-1); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		return nil
	})
}

// Version 当前版本，未执行过迁移时返回 0
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	err = m.run(func(mg *migrate.Migrate) error {
		version, dirty, err = currentVersion(mg)
		return err
	})
	return version, dirty, err
}

// Force 强制设置版本，用于修复 dirty 状态
func (m *Migrator) Force(version int) error {
	return m.run(func(mg *migrate.Migrate) error {
		if err := mg.Force(version); err != nil {
			return fmt.Errorf("force version %d failed: %w", version, err)
		}
		m.logger.Warn("Forced migration version", zap.Int("version", version))
		return nil
	})
}

func (m *Migrator) run(fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(m.source, ".")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}
	driver, err := postgres.WithInstance(m.db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	mg, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to init migrate: %w", err)
	}
	mg.Log = migrateLogger{m.logger}
	defer mg.Close()

	return fn(mg)
}

func currentVersion(mg *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, dirty, nil
}

// migrateLogger 实现 migrate.Logger
type migrateLogger struct {
	logger *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return false
}
