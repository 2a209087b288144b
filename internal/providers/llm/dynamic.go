package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
)

type providerFactory func(ctx context.Context, cfg config.LLMConfig) (core.ChatModel, error)

// DynamicProvider lets the chat model be swapped at runtime without
// rebuilding the components holding it.
type DynamicProvider struct {
	config  config.LLMConfig
	current atomic.Value
	mu      sync.RWMutex
	factory providerFactory
}

var _ core.ChatModel = (*DynamicProvider)(nil)

func NewDynamicProvider(ctx context.Context, cfg config.LLMConfig) (*DynamicProvider, error) {
	return newDynamicProvider(ctx, cfg, NewProvider)
}

func newDynamicProvider(ctx context.Context, cfg config.LLMConfig, factory providerFactory) (*DynamicProvider, error) {
	d := &DynamicProvider{config: cfg, factory: factory}

	provider, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial provider: %w", err)
	}

	d.current.Store(&provider)
	return d, nil
}

func (d *DynamicProvider) Chat(ctx context.Context, messages []core.Message) (string, error) {
	provider := *d.current.Load().(*core.ChatModel)
	return provider.Chat(ctx, messages)
}

func (d *DynamicProvider) GetModel() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config.Model
}

func (d *DynamicProvider) GetProvider() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config.Provider
}

// SetModel switches to another model on the same provider.
func (d *DynamicProvider) SetModel(ctx context.Context, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model name is empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.config
	next.Model = model

	provider, err := d.factory(ctx, next)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	d.config = next
	d.current.Store(&provider)
	return nil
}
