package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
	"github.com/sandevgo/lobug/pkg/retry"
)

const (
	baseMemoryHeader = "[Long-term memory]"
	factsHeader      = "[Relevant memories]"
)

type retrievalStore interface {
	GetBaseMemory(ctx context.Context) (string, error)
	SearchFacts(ctx context.Context, query []float32, k int) ([]core.FactMatch, error)
}

// Retriever assembles the memory block injected ahead of every reply.
type Retriever struct {
	store       retrievalStore
	embedder    core.Embedder
	topK        int
	maxDistance float64
	timeout     time.Duration
}

// NewRetriever builds a retriever. timeout bounds the query embed and the
// fact search together; 0 leaves them unbounded.
func NewRetriever(store retrievalStore, embedder core.Embedder, topK int, minSimilarity float64, timeout time.Duration) *Retriever {
	return &Retriever{
		store:       store,
		embedder:    embedder,
		topK:        topK,
		maxDistance: 1 - minSimilarity,
		timeout:     timeout,
	}
}

// RetrieveContext never fails. A broken base memory read yields an empty
// base; a broken embed or search yields no facts.
func (r *Retriever) RetrieveContext(ctx context.Context, query string) (mc core.MemoryContext) {
	logger := log.FromCtx(ctx).With().Str("component", "retriever").Logger()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("retrieval panicked")
			mc.Formatted = FormatContext(mc.BaseMemory, mc.RelevantFacts)
		}
	}()

	base, err := r.store.GetBaseMemory(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("base memory unavailable")
		base = ""
	}
	mc.BaseMemory = base

	facts, err := r.relevantFacts(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("fact retrieval failed")
	}
	mc.RelevantFacts = facts
	mc.Formatted = FormatContext(base, facts)

	logger.Debug().
		Int("base_chars", len(base)).
		Int("facts", len(facts)).
		Msg("memory context assembled")
	return mc
}

func (r *Retriever) relevantFacts(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" || r.topK <= 0 {
		return nil, nil
	}

	// A reply is waiting on this; one attempt, no backoff.
	ctx = retry.WithoutRetries(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.store.SearchFacts(ctx, vec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search facts: %w", err)
	}

	var out []string
	for _, m := range matches {
		if m.Distance <= r.maxDistance {
			out = append(out, m.Content)
		}
	}
	return out, nil
}

// FormatContext renders the base memory and fact blocks. Each block appears
// only when it has content; both empty gives "".
func FormatContext(base string, facts []string) string {
	var parts []string
	if base != "" {
		parts = append(parts, baseMemoryHeader+"\n"+base)
	}
	if len(facts) > 0 {
		parts = append(parts, factsHeader+"\n"+bulletList(facts))
	}
	return strings.Join(parts, "\n\n")
}
