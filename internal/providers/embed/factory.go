package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
)

// NewEmbedder builds the configured embedder wrapped in a cache. The
// returned close func releases the cache.
func NewEmbedder(ctx context.Context, cfg config.EmbedderConfig, mem config.MemoryConfig) (core.Embedder, func() error, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", mem.EmbeddingModel).
		Int("dim", mem.EmbeddingDim).
		Msg("starting embedder")

	var base core.Embedder
	switch cfg.Provider {
	case config.EmbedderOpenAI:
		base = NewOpenAI(cfg.BaseURL, cfg.APIKey, mem.EmbeddingModel, mem.EmbeddingDim)
	case config.EmbedderHash:
		base = NewHash(mem.EmbeddingDim)
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	cached, err := NewCached(base, mem.EmbeddingCacheSize)
	if err != nil {
		return nil, nil, err
	}
	return cached, cached.Close, nil
}
