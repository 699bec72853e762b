package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/config"
)

// New builds the configured provider and wraps it as
// Limit -> Retry -> Timeout -> provider, so every attempt gets its own deadline.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("llm")

	var base Completer
	switch cfg.Provider {
	case config.ProviderGemini:
		if !cfg.Enabled() {
			return nil, fmt.Errorf("GEMINI_API_KEY 或 GEMINI_MODEL 未配置")
		}
		gemini, err := NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		base = gemini
	case config.ProviderArk, "":
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, err
		}
		chain, err := NewChainCompleter(ctx, chatModel)
		if err != nil {
			return nil, err
		}
		base = chain
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	logger.Info("llm completer ready",
		zap.String("provider", cfg.Provider),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("retries", cfg.Retries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	return Wrap(base, cfg, logger), nil
}

// Wrap applies the resilience middleware described by cfg to base.
func Wrap(base Completer, cfg config.LLMConfig, logger *zap.Logger) Completer {
	c := Timeout(base, cfg.Timeout)
	c = Retry(c, cfg.Retries, cfg.RetryBackoff, logger)
	return Limit(c, int64(cfg.MaxConcurrency))
}
