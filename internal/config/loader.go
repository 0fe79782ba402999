package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，如 AUTOPILOT_DATABASE_HOST
const EnvPrefix = "AUTOPILOT"

// Loader 配置加载器
type Loader struct {
	v       *viper.Viper
	config  *Config
	mu      sync.RWMutex
	watches []func(*Config)
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{
		v:       viper.New(),
		config:  Default(),
		watches: make([]func(*Config), 0),
	}
}

// LoadDotEnv 加载 .env 文件到进程环境，文件不存在时忽略
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// Load 从指定路径加载配置
// 支持多个路径，后面的配置会覆盖前面的
func (l *Loader) Load(paths ...string) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.v.SetConfigType("yaml")

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	l.setDefaults()

	for _, path := range paths {
		if path == "" {
			continue
		}
		l.v.SetConfigFile(path)
		if err := l.v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}

	l.config = cfg
	return cfg, nil
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyKeyFallback(cfg)
	return cfg, nil
}

// applyKeyFallback 未配置 llm.api_key 时使用供应商的通用环境变量
func applyKeyFallback(cfg *Config) {
	if cfg.LLM.APIKey != "" {
		return
	}
	switch cfg.LLM.Provider {
	case ProviderGemini:
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	default:
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// setDefaults 设置默认值
// 每个键都需要默认值，AutomaticEnv 只对已知键生效
func (l *Loader) setDefaults() {
	def := Default()

	l.v.SetDefault("server.addr", def.Server.Addr)
	l.v.SetDefault("server.mode", def.Server.Mode)
	l.v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	l.v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	l.v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	l.v.SetDefault("server.trusted_proxies", def.Server.TrustedProxies)
	l.v.SetDefault("server.trusted_platform", def.Server.TrustedPlatform)

	l.v.SetDefault("database.url", def.Database.URL)
	l.v.SetDefault("database.host", def.Database.Host)
	l.v.SetDefault("database.port", def.Database.Port)
	l.v.SetDefault("database.database", def.Database.Database)
	l.v.SetDefault("database.username", def.Database.Username)
	l.v.SetDefault("database.password", def.Database.Password)
	l.v.SetDefault("database.ssl_mode", def.Database.SSLMode)
	l.v.SetDefault("database.application_name", def.Database.ApplicationName)
	l.v.SetDefault("database.max_open_conns", def.Database.MaxOpenConns)
	l.v.SetDefault("database.max_idle_conns", def.Database.MaxIdleConns)
	l.v.SetDefault("database.conn_max_lifetime", def.Database.ConnMaxLifetime)
	l.v.SetDefault("database.conn_max_idle_time", def.Database.ConnMaxIdleTime)
	l.v.SetDefault("database.prepare_stmt", def.Database.PrepareStmt)
	l.v.SetDefault("database.log_level", def.Database.LogLevel)
	l.v.SetDefault("database.slow_query_threshold", def.Database.SlowQueryThreshold)
	l.v.SetDefault("database.auto_migrate", def.Database.AutoMigrate)

	l.v.SetDefault("redis.enabled", def.Redis.Enabled)
	l.v.SetDefault("redis.addr", def.Redis.Addr)
	l.v.SetDefault("redis.password", def.Redis.Password)
	l.v.SetDefault("redis.db", def.Redis.DB)
	l.v.SetDefault("redis.cache_ttl", def.Redis.CacheTTL)
	l.v.SetDefault("redis.session_ttl", def.Redis.SessionTTL)

	l.v.SetDefault("kafka.enabled", def.Kafka.Enabled)
	l.v.SetDefault("kafka.brokers", def.Kafka.Brokers)
	l.v.SetDefault("kafka.topic", def.Kafka.Topic)
	l.v.SetDefault("kafka.group_id", def.Kafka.GroupID)

	l.v.SetDefault("llm.provider", def.LLM.Provider)
	l.v.SetDefault("llm.api_key", def.LLM.APIKey)
	l.v.SetDefault("llm.base_url", def.LLM.BaseURL)
	l.v.SetDefault("llm.model", def.LLM.Model)
	l.v.SetDefault("llm.gemini_model", def.LLM.GeminiModel)
	l.v.SetDefault("llm.max_tokens", def.LLM.MaxTokens)
	l.v.SetDefault("llm.timeout", def.LLM.Timeout)

	l.v.SetDefault("auth.jwt_secret", def.Auth.JWTSecret)
	l.v.SetDefault("auth.issuer", def.Auth.Issuer)
	l.v.SetDefault("auth.expires_in", def.Auth.ExpiresIn)

	l.v.SetDefault("log.level", def.Log.Level)
	l.v.SetDefault("log.output", def.Log.Output)
	l.v.SetDefault("log.file_path", def.Log.FilePath)
	l.v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	l.v.SetDefault("log.max_backups", def.Log.MaxBackups)
	l.v.SetDefault("log.max_age_days", def.Log.MaxAgeDays)

	l.v.SetDefault("ratelimit.enabled", def.RateLimit.Enabled)
	l.v.SetDefault("ratelimit.requests_per_second", def.RateLimit.RequestsPerSecond)
	l.v.SetDefault("ratelimit.burst", def.RateLimit.Burst)

	l.v.SetDefault("geoip.db_path", def.GeoIP.DBPath)
	l.v.SetDefault("cors.allow_origins", def.CORS.AllowOrigins)
	l.v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	l.v.SetDefault("metrics.path", def.Metrics.Path)
}

// Get 获取当前配置（线程安全）
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// Watch 监听配置文件变更
// callback 会在配置变更且校验通过时被调用
func (l *Loader) Watch(callback func(*Config)) error {
	l.mu.Lock()
	l.watches = append(l.watches, callback)
	l.mu.Unlock()

	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.mu.Lock()
		defer l.mu.Unlock()

		cfg, err := l.unmarshal()
		if err != nil {
			// 配置解析失败，保持原配置
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}

		l.config = cfg
		for _, watch := range l.watches {
			watch(cfg)
		}
	})

	l.v.WatchConfig()
	return nil
}

// LoadAndValidate 加载并验证配置
func LoadAndValidate(paths ...string) (*Config, error) {
	loader := NewLoader()
	cfg, err := loader.Load(paths...)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Marshal 将配置序列化为 YAML，敏感字段不输出
func Marshal(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
