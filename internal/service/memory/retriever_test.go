package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) GetBaseMemory(context.Context) (string, error) {
	return "", errors.New("disk on fire")
}

func (brokenStore) SearchFacts(context.Context, []float32, int) ([]core.FactMatch, error) {
	return nil, errors.New("disk on fire")
}

func TestFormatContext(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		facts []string
		want  string
	}{
		{"both empty", "", nil, ""},
		{"base only", "Alex likes tea.", nil, "[Long-term memory]\nAlex likes tea."},
		{"facts only", "", []string{"a", "b"}, "[Relevant memories]\n- a\n- b"},
		{
			name:  "both",
			base:  "Profile",
			facts: []string{"fact one"},
			want:  "[Long-term memory]\nProfile\n\n[Relevant memories]\n- fact one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatContext(tt.base, tt.facts))
		})
	}
}

func TestRetrieveContext_NeverFails(t *testing.T) {
	ctx := context.Background()

	t.Run("store errors", func(t *testing.T) {
		r := NewRetriever(brokenStore{}, newVecEmbedder(), 5, 0.3, time.Second)
		mc := r.RetrieveContext(ctx, "hello")
		assert.Equal(t, core.MemoryContext{}, mc)
	})

	t.Run("embedder errors keep base", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.SetBaseMemory(ctx, "Alex builds robots."))

		mc := NewRetriever(s, failingEmbedder{}, 5, 0.3, time.Second).RetrieveContext(ctx, "robots?")
		assert.Equal(t, "Alex builds robots.", mc.BaseMemory)
		assert.Empty(t, mc.RelevantFacts)
		assert.Equal(t, "[Long-term memory]\nAlex builds robots.", mc.Formatted)
	})

	t.Run("embedder panics", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.SetBaseMemory(ctx, "base"))

		var mc core.MemoryContext
		assert.NotPanics(t, func() {
			mc = NewRetriever(s, panickingEmbedder{}, 5, 0.3, time.Second).RetrieveContext(ctx, "x")
		})
		assert.Equal(t, "base", mc.BaseMemory)
		assert.Equal(t, "[Long-term memory]\nbase", mc.Formatted)
	})
}

func TestRetrieveContext_DistanceFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	emb := newVecEmbedder()

	query := []float32{1, 0, 0, 0}
	emb.set("what do I drink?", query)

	_, err := s.InsertFact(ctx, "close fact", atDistance(0.1), core.SourceExtraction, core.FactPreference)
	require.NoError(t, err)
	_, err = s.InsertFact(ctx, "edge fact", atDistance(0.69), core.SourceExtraction, core.FactKnowledge)
	require.NoError(t, err)
	_, err = s.InsertFact(ctx, "far fact", atDistance(0.9), core.SourceExtraction, core.FactKnowledge)
	require.NoError(t, err)

	mc := NewRetriever(s, emb, 5, 0.3, time.Second).RetrieveContext(ctx, "what do I drink?")
	assert.Equal(t, []string{"close fact", "edge fact"}, mc.RelevantFacts)
	assert.Equal(t, "", mc.BaseMemory)
	assert.Equal(t, "[Relevant memories]\n- close fact\n- edge fact", mc.Formatted)

	// top k bounds the candidate set before filtering
	mc = NewRetriever(s, emb, 1, 0.3, time.Second).RetrieveContext(ctx, "what do I drink?")
	assert.Equal(t, []string{"close fact"}, mc.RelevantFacts)
}

func TestRetrieveContext_BlankQuerySkipsSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.InsertFact(ctx, "anything", []float32{0, 0, 0, 1}, core.SourceExtraction, core.FactKnowledge)
	require.NoError(t, err)

	mc := NewRetriever(s, panickingEmbedder{}, 5, 0.0, time.Second).RetrieveContext(ctx, "   ")
	assert.Empty(t, mc.RelevantFacts)
	assert.Equal(t, "", mc.Formatted)
}

// stallingEmbedder hangs until the caller gives up.
type stallingEmbedder struct{}

func (stallingEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (stallingEmbedder) Dims() int { return testDim }

// retryingEmbedder fails every attempt behind the default retrier.
type retryingEmbedder struct {
	attempts atomic.Int32
}

func (e *retryingEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	err := retry.NewDefaultRetrier().Do(ctx, func(context.Context) error {
		e.attempts.Add(1)
		return errors.New("connection refused")
	})
	return nil, err
}
func (e *retryingEmbedder) Dims() int { return testDim }

func TestRetrieveContext_TimeoutBoundsHungEmbedder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SetBaseMemory(ctx, "Alex builds robots."))

	r := NewRetriever(s, stallingEmbedder{}, 5, 0.3, 50*time.Millisecond)

	start := time.Now()
	mc := r.RetrieveContext(ctx, "what tea do I like")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second)
	assert.Empty(t, mc.RelevantFacts)
	assert.Equal(t, "Alex builds robots.", mc.BaseMemory)
	assert.Equal(t, "[Long-term memory]\nAlex builds robots.", mc.Formatted)
}

func TestRetrieveContext_EmbedsOnce(t *testing.T) {
	ctx := context.Background()
	emb := &retryingEmbedder{}
	r := NewRetriever(newTestStore(t), emb, 5, 0.3, 5*time.Second)

	start := time.Now()
	mc := r.RetrieveContext(ctx, "what tea do I like")

	assert.Less(t, time.Since(start), 250*time.Millisecond, "no backoff on the reply path")
	assert.Equal(t, int32(1), emb.attempts.Load())
	assert.Empty(t, mc.Formatted)
}
