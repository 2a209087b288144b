package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderOllama     = "ollama"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderCustom     = "custom"
	ProviderStub       = "stub"

	EmbedderOpenAI = "openai"
	EmbedderHash   = "hash"
)

// LLMConfig selects and configures the chat model.
type LLMConfig struct {
	Provider  string `env:"LOBUG_LLM_PROVIDER" envDefault:"ollama"`
	Model     string `env:"LOBUG_CHAT_MODEL" envDefault:"llama3.1"`
	BaseURL   string `env:"LOBUG_LLM_BASE_URL"`
	MaxTokens int64  `env:"LOBUG_CHAT_MAX_TOKENS" envDefault:"1024"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
}

// EmbedderConfig points at an OpenAI-compatible /embeddings endpoint.
// Model and dimension live in MemoryConfig since the store depends on them.
type EmbedderConfig struct {
	Provider string `env:"LOBUG_EMBEDDING_PROVIDER" envDefault:"openai"`
	BaseURL  string `env:"LOBUG_EMBEDDING_BASE_URL" envDefault:"http://localhost:11434/v1"`
	APIKey   string `env:"LOBUG_EMBEDDING_API_KEY" envDefault:"ollama"`
}

func ParseLLMConfig() (*LLMConfig, error) {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse llm config: %w", err)
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	return c, nil
}

func ParseEmbedderConfig() (*EmbedderConfig, error) {
	c := &EmbedderConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse embedder config: %w", err)
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	return c, nil
}

// ResolveBaseURL returns the endpoint for OpenAI-compatible providers.
func (c LLMConfig) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	switch c.Provider {
	case ProviderOllama:
		return "http://localhost:11434/v1"
	case ProviderOpenRouter:
		return "https://openrouter.ai/api/v1"
	}
	return ""
}

// ResolveAPIKey picks the key matching the provider.
func (c LLMConfig) ResolveAPIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	case ProviderOllama:
		if c.OpenAIAPIKey == "" {
			return "ollama"
		}
	}
	return c.OpenAIAPIKey
}
