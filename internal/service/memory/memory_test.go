package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMemoryConfig(t *testing.T) config.MemoryConfig {
	cfg := config.DefaultMemoryConfig(t.TempDir())
	cfg.EmbeddingDim = testDim
	return cfg
}

func TestProcessExchange_FullPipeline(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedMessages(t, s, 30)

	chat := &scriptedChat{route: func(msgs []core.Message) (string, error) {
		switch {
		case isExtraction(msgs):
			return `[{"fact": "The user plays chess.", "type": "preference"}]`, nil
		case isSummary(msgs):
			return "They chatted.", nil
		case isDistill(msgs):
			return "should not run", nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}}

	svc := NewService(s, chat, newVecEmbedder(), testMemoryConfig(t))
	rep := svc.ProcessExchange(ctx, "I play chess", "Nice!")

	require.NoError(t, rep.Err)
	assert.Equal(t, 1, rep.Extraction.Inserted)
	assert.Equal(t, 20, rep.ShortTerm.Processed)
	assert.False(t, rep.LongTerm.Triggered)

	mc := svc.RetrieveContext(ctx, "chess")
	assert.Equal(t, []string{"The user plays chess."}, mc.RelevantFacts)
}

func TestProcessExchange_FailuresAreContained(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedMessages(t, s, 30)

	chat := &scriptedChat{route: func(msgs []core.Message) (string, error) {
		if isExtraction(msgs) {
			return "", errors.New("extraction model crashed")
		}
		return "A short summary.", nil
	}}

	svc := NewService(s, chat, newVecEmbedder(), testMemoryConfig(t))

	var rep Report
	assert.NotPanics(t, func() { rep = svc.ProcessExchange(ctx, "u", "a") })
	assert.Error(t, rep.Err)
	assert.Equal(t, 20, rep.ShortTerm.Processed, "cascade still runs after extraction fails")
}

func TestProcessExchange_PanicContained(t *testing.T) {
	s := newTestStore(t)
	svc := NewService(s, &scriptedChat{reply: `[{"fact": "x"}]`}, panickingEmbedder{}, testMemoryConfig(t))

	var rep Report
	assert.NotPanics(t, func() { rep = svc.ProcessExchange(context.Background(), "u", "a") })
	assert.Error(t, rep.Err)
}

func TestConsolidateNow_SkipsExtraction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedMessages(t, s, 31)

	chat := &scriptedChat{route: func(msgs []core.Message) (string, error) {
		if isExtraction(msgs) {
			return "", errors.New("extraction must not run")
		}
		return "summary", nil
	}}

	rep := NewService(s, chat, newVecEmbedder(), testMemoryConfig(t)).ConsolidateNow(ctx)
	require.NoError(t, rep.Err)
	assert.Equal(t, int64(21), rep.ShortTerm.ToID)
	assert.Zero(t, rep.Extraction.Extracted)
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewService(s, &scriptedChat{}, newVecEmbedder(), testMemoryConfig(t))

	out, err := svc.Remember(ctx, "  The user is allergic to peanuts. ", core.FactPersonal)
	require.NoError(t, err)
	assert.False(t, out.Replaced())

	// same default vector, so the second one replaces the first
	out, err = svc.Remember(ctx, "The user is severely allergic to peanuts.", "")
	require.NoError(t, err)
	assert.True(t, out.Replaced())

	facts, err := s.ListFacts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, core.SourceManual, facts[0].Source)
	assert.Equal(t, core.FactKnowledge, facts[0].Type)

	_, err = svc.Remember(ctx, "   ", core.FactKnowledge)
	assert.Error(t, err)
}
