// Package config 提供 Autopilot 服务的配置管理功能
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/houzhh15/autopilot/pkg/database"
)

// LLM 供应商
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config 定义服务的完整配置结构
type Config struct {
	Server    ServerConfig      `mapstructure:"server" yaml:"server"`
	Database  database.DBConfig `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig       `mapstructure:"redis" yaml:"redis"`
	Kafka     KafkaConfig       `mapstructure:"kafka" yaml:"kafka"`
	LLM       LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Auth      AuthConfig        `mapstructure:"auth" yaml:"auth"`
	Log       LogConfig         `mapstructure:"log" yaml:"log"`
	RateLimit RateLimitConfig   `mapstructure:"ratelimit" yaml:"ratelimit"`
	GeoIP     GeoIPConfig       `mapstructure:"geoip" yaml:"geoip"`
	CORS      CORSConfig        `mapstructure:"cors" yaml:"cors"`
	Metrics   MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	Mode            string        `mapstructure:"mode" yaml:"mode"` // gin 模式: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// TrustedProxies 允许设置 X-Forwarded-For 的代理 IP 或 CIDR，为空时只信任连接地址
	TrustedProxies []string `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
	// TrustedPlatform 可选的平台客户端 IP 头，例如 CF-Connecting-IP
	TrustedPlatform string `mapstructure:"trusted_platform" yaml:"trusted_platform"`
}

// RedisConfig Redis 缓存与会话配置
type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr       string        `mapstructure:"addr" yaml:"addr"`
	Password   string        `mapstructure:"password" yaml:"-"`
	DB         int           `mapstructure:"db" yaml:"db"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
}

// KafkaConfig 领域事件总线配置
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
	GroupID string   `mapstructure:"group_id" yaml:"group_id"`
}

// LLMConfig 文案生成模型配置
type LLMConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"` // openai, gemini
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Model       string        `mapstructure:"model" yaml:"model"`
	GeminiModel string        `mapstructure:"gemini_model" yaml:"gemini_model"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AuthConfig JWT 配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"-"`
	Issuer    string        `mapstructure:"issuer" yaml:"issuer"`
	ExpiresIn time.Duration `mapstructure:"expires_in" yaml:"expires_in"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`             // 日志级别: debug, info, warn, error
	Output     string `mapstructure:"output" yaml:"output"`           // 输出方式: console, file, both
	FilePath   string `mapstructure:"file_path" yaml:"file_path"`     // 日志文件路径
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"` // 单文件最大大小(MB)
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"` // 最大保留文件数
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// RateLimitConfig 公开函数端点的按 IP 限流配置
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// GeoIPConfig GeoIP 数据库配置，路径为空时不解析国家
type GeoIPConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// CORSConfig /api 路由的跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins" yaml:"allow_origins"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	for _, proxy := range c.Server.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("server.trusted_proxies: invalid IP or CIDR %q", proxy)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required when kafka is enabled")
		}
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be one of: %s, %s", ProviderOpenAI, ProviderGemini)
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be greater than 0")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("ratelimit.requests_per_second and ratelimit.burst must be greater than 0")
	}

	// 检查日志级别
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if c.Log.Level != "" && !validLevels[c.Log.Level] {
		return errors.New("log.level must be one of: debug, info, warn, error")
	}

	// 检查日志输出方式
	validOutputs := map[string]bool{
		"console": true,
		"file":    true,
		"both":    true,
	}
	if c.Log.Output != "" && !validOutputs[c.Log.Output] {
		return errors.New("log.output must be one of: console, file, both")
	}

	return nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: *database.DefaultDBConfig(),
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			CacheTTL:   5 * time.Minute,
			SessionTTL: 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "autopilot.events",
			GroupID: "autopilot-worker",
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			GeminiModel: "gemini-2.0-flash",
			MaxTokens:   300,
			Timeout:     60 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:    "autopilot",
			ExpiresIn: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			Output:     "console",
			FilePath:   "/var/log/autopilot/autopilot.log",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}
