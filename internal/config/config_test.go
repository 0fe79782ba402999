package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected server.addr to be ':8080', got %s", cfg.Server.Addr)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected llm.model to be 'gpt-4o-mini', got %s", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 300 {
		t.Errorf("expected llm.max_tokens to be 300, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log.level to be 'info', got %s", cfg.Log.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"trusted proxies", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.10"} }, false},
		{"invalid trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.internal"} }, true},
		{"empty database host", func(c *Config) { c.Database.Host = "" }, true},
		{"redis enabled without addr", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = ""
		}, true},
		{"kafka enabled without brokers", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, true},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "anthropic" }, true},
		{"gemini provider", func(c *Config) { c.LLM.Provider = ProviderGemini }, false},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }, true},
		{"rate limit without burst", func(c *Config) { c.RateLimit.Burst = 0 }, true},
		{"rate limit disabled", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.Burst = 0
		}, false},
		{"invalid log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"invalid log output", func(c *Config) { c.Log.Output = "syslog" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  addr: ":9090"
database:
  host: db.internal
  max_open_conns: 10
llm:
  max_tokens: 200
  timeout: 5s
log:
  level: debug
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 200, cfg.LLM.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("AUTOPILOT_SERVER_ADDR", ":7070")
	t.Setenv("AUTOPILOT_LLM_PROVIDER", "gemini")
	t.Setenv("AUTOPILOT_DATABASE_PASSWORD", "s3cret")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoader_APIKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-fallback", cfg.LLM.APIKey)

	t.Setenv("AUTOPILOT_LLM_API_KEY", "sk-explicit")
	cfg, err = NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-explicit", cfg.LLM.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "AUTOPILOT_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { os.Unsetenv("AUTOPILOT_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("AUTOPILOT_TEST_DOTENV"))
}

func TestMarshal_HidesSecrets(t *testing.T) {
	cfg := Default()
	cfg.Database.Password = "db-password"
	cfg.LLM.APIKey = "sk-secret"
	cfg.Auth.JWTSecret = "jwt-secret"

	out, err := Marshal(cfg)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.Contains(text, "gpt-4o-mini"))
	assert.NotContains(t, text, "db-password")
	assert.NotContains(t, text, "sk-secret")
	assert.NotContains(t, text, "jwt-secret")
}
