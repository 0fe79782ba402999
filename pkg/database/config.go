package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// DBConfig 数据库配置
//
// URL 非空时直接作为连接串使用（托管 Postgres 通常只提供连接 URL），
// 此时 Host/Port 等字段被忽略。经由事务模式连接池（如 pgbouncer）连接时需关闭 PrepareStmt。
type DBConfig struct {
	URL             string `yaml:"-" mapstructure:"url" json:"-"`
	Host            string `yaml:"host" mapstructure:"host" json:"host"`
	Port            int    `yaml:"port" mapstructure:"port" json:"port"`
	Database        string `yaml:"database" mapstructure:"database" json:"database"`
	Username        string `yaml:"username" mapstructure:"username" json:"username"`
	Password        string `yaml:"-" mapstructure:"password" json:"-"`
	SSLMode         string `yaml:"ssl_mode" mapstructure:"ssl_mode" json:"ssl_mode"`
	ApplicationName string `yaml:"application_name" mapstructure:"application_name" json:"application_name"`

	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time" json:"conn_max_idle_time"`

	PrepareStmt        bool          `yaml:"prepare_stmt" mapstructure:"prepare_stmt" json:"prepare_stmt"`
	LogLevel           string        `yaml:"log_level" mapstructure:"log_level" json:"log_level"` // silent, error, warn, info
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold" json:"slow_query_threshold"`

	// serve 启动时自动执行迁移
	AutoMigrate bool `yaml:"auto_migrate" mapstructure:"auto_migrate" json:"auto_migrate"`
}

// DefaultDBConfig 默认配置
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Host:               "localhost",
		Port:               5432,
		Database:           "autopilot",
		Username:           "autopilot",
		SSLMode:            "disable",
		ApplicationName:    "autopilot",
		MaxOpenConns:       25,
		MaxIdleConns:       5,
		ConnMaxLifetime:    5 * time.Minute,
		ConnMaxIdleTime:    5 * time.Minute,
		PrepareStmt:        true,
		LogLevel:           "warn",
		SlowQueryThreshold: 200 * time.Millisecond,
	}
}

// DSN 生成连接串
func (c *DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	parts := []string{
		"host=" + c.Host,
		fmt.Sprintf("port=%d", c.Port),
		"user=" + c.Username,
		"password=" + c.Password,
		"dbname=" + c.Database,
		"sslmode=" + c.SSLMode,
	}
	if c.ApplicationName != "" {
		parts = append(parts, "application_name="+c.ApplicationName)
	}
	return strings.Join(parts, " ")
}

// Validate 校验配置
func (c *DBConfig) Validate() error {
	if c.URL == "" {
		if c.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Port)
		}
		if c.Database == "" {
			return fmt.Errorf("database name is required")
		}
	} else if !strings.HasPrefix(c.URL, "postgres://") && !strings.HasPrefix(c.URL, "postgresql://") {
		return fmt.Errorf("database url must start with postgres:// or postgresql://")
	}
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max_open_conns must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot exceed max_open_conns")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel 解析 GORM 日志级别，空值按 warn 处理
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "", "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	default:
		return 0, fmt.Errorf("database log_level must be one of: silent, error, warn, info")
	}
}
