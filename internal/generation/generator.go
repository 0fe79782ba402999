package generation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/config"
)

// Generator 文本生成接口
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewGenerator 按 llm.provider 创建生成器，未配置密钥时返回 nil
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		logger.Warn("LLM API key not configured, post generation disabled",
			zap.String("provider", cfg.Provider))
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(cfg), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
