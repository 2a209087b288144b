package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
)

const stubReply = "I'm running without a language model right now."

// NewProvider creates the chat model matching cfg.Provider.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (core.ChatModel, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens), nil
	case config.ProviderOpenAI, config.ProviderOllama, config.ProviderOpenRouter, config.ProviderCustom:
		if cfg.Provider == config.ProviderCustom && cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom provider requires LOBUG_LLM_BASE_URL")
		}
		return NewOpenAI(cfg.ResolveBaseURL(), cfg.ResolveAPIKey(), cfg.Model, cfg.MaxTokens), nil
	case config.ProviderStub:
		return NewStub(stubReply), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
