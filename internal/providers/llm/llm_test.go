package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.LLMConfig
		want    any
		wantErr bool
	}{
		{"ollama", config.LLMConfig{Provider: config.ProviderOllama, Model: "llama3.1"}, &OpenAI{}, false},
		{"openrouter", config.LLMConfig{Provider: config.ProviderOpenRouter, Model: "m", OpenRouterAPIKey: "k"}, &OpenAI{}, false},
		{"anthropic", config.LLMConfig{Provider: config.ProviderAnthropic, Model: "claude", AnthropicAPIKey: "k"}, &Anthropic{}, false},
		{"anthropic without key", config.LLMConfig{Provider: config.ProviderAnthropic}, nil, true},
		{"custom without url", config.LLMConfig{Provider: config.ProviderCustom}, nil, true},
		{"unknown", config.LLMConfig{Provider: "carrier-pigeon"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewProvider(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestSplitAnthropicMessages(t *testing.T) {
	system, turns := splitAnthropicMessages([]core.Message{
		{Role: core.RoleSystem, Content: "persona"},
		{Role: core.RoleSystem, Content: ""},
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
	})

	require.Len(t, system, 1)
	assert.Equal(t, "persona", system[0].Text)
	assert.Len(t, turns, 2)
}

func TestToOpenAIMessages(t *testing.T) {
	out := toOpenAIMessages([]core.Message{
		{Role: core.RoleSystem, Content: "s"},
		{Role: core.RoleUser, Content: "u"},
		{Role: core.RoleAssistant, Content: "a"},
	})
	require.Len(t, out, 3)
	assert.NotNil(t, out[0].OfSystem)
	assert.NotNil(t, out[1].OfUser)
	assert.NotNil(t, out[2].OfAssistant)
}

func TestStub(t *testing.T) {
	s := NewStub("one", "two")
	ctx := context.Background()

	for _, want := range []string{"one", "two", "two"} {
		got, err := s.Chat(ctx, []core.Message{{Role: core.RoleUser, Content: "x"}})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Len(t, s.Calls(), 3)
}

func TestDynamicProvider_SetModel(t *testing.T) {
	ctx := context.Background()
	built := map[string]*Stub{}
	factory := func(_ context.Context, cfg config.LLMConfig) (core.ChatModel, error) {
		if cfg.Model == "broken" {
			return nil, errors.New("no such model")
		}
		s := NewStub("from " + cfg.Model)
		built[cfg.Model] = s
		return s, nil
	}

	d, err := newDynamicProvider(ctx, config.LLMConfig{Provider: "stub", Model: "a"}, factory)
	require.NoError(t, err)

	reply, err := d.Chat(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "from a", reply)

	require.NoError(t, d.SetModel(ctx, "b"))
	assert.Equal(t, "b", d.GetModel())
	reply, err = d.Chat(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "from b", reply)

	assert.Error(t, d.SetModel(ctx, "broken"))
	assert.Equal(t, "b", d.GetModel(), "failed switch keeps the current model")
	assert.Error(t, d.SetModel(ctx, "  "))
}
