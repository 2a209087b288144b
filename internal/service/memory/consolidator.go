package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
)

const probeFactsK = 10

type consolidationStore interface {
	core.MessageLog
	core.SummaryLog
	core.BaseMemoryStore
	SearchFacts(ctx context.Context, query []float32, k int) ([]core.FactMatch, error)
}

type CascadeConfig struct {
	ShortTermThreshold int
	ShortTermKeep      int
	LongTermThreshold  int
	LongTermKeep       int
}

// CascadeResult describes one cascade run. Triggered means the pending
// count reached the threshold; Processed is how many rows were folded.
type CascadeResult struct {
	Triggered bool
	Processed int
	FromID    int64
	ToID      int64
}

// Consolidator folds old messages into summaries and old summaries into the
// base memory document.
type Consolidator struct {
	store    consolidationStore
	chat     core.ChatModel
	embedder core.Embedder
	cfg      CascadeConfig

	shortMu sync.Mutex
	longMu  sync.Mutex
}

func NewConsolidator(store consolidationStore, chat core.ChatModel, embedder core.Embedder, cfg CascadeConfig) *Consolidator {
	return &Consolidator{
		store:    store,
		chat:     chat,
		embedder: embedder,
		cfg:      cfg,
	}
}

// RunShortTerm summarizes every unsummarized message except the newest
// ShortTermKeep once ShortTermThreshold of them have piled up. The watermark
// only moves after the summary is stored.
func (c *Consolidator) RunShortTerm(ctx context.Context) (CascadeResult, error) {
	c.shortMu.Lock()
	defer c.shortMu.Unlock()

	var res CascadeResult
	logger := log.FromCtx(ctx).With().Str("component", "consolidator").Str("cascade", "short_term").Logger()

	count, err := c.store.UnsummarizedCount(ctx)
	if err != nil {
		return res, err
	}
	if count < c.cfg.ShortTermThreshold {
		return res, nil
	}
	res.Triggered = true
	logger.Info().Int("pending", count).Msg("cascade triggered")

	msgs, err := c.store.UnsummarizedMessages(ctx)
	if err != nil {
		return res, err
	}
	batch := oldest(msgs, c.cfg.ShortTermKeep)
	if len(batch) == 0 {
		logger.Debug().Int("keep", c.cfg.ShortTermKeep).Msg("nothing to fold")
		return res, nil
	}

	summary, err := c.complete(ctx, summaryMessages(batch))
	if err != nil {
		return res, fmt.Errorf("summarize: %w", err)
	}

	from, to := batch[0].ID, batch[len(batch)-1].ID
	if _, err := c.store.InsertSummary(ctx, summary, from, to); err != nil {
		return res, err
	}
	if err := c.store.MarkSummarized(ctx, to); err != nil {
		return res, err
	}

	res.Processed, res.FromID, res.ToID = len(batch), from, to
	logger.Info().Int64("from", from).Int64("to", to).Msg("messages summarized")
	return res, nil
}

// RunLongTerm distills every unincorporated summary except the newest
// LongTermKeep into the base memory once LongTermThreshold is reached.
func (c *Consolidator) RunLongTerm(ctx context.Context) (CascadeResult, error) {
	c.longMu.Lock()
	defer c.longMu.Unlock()

	var res CascadeResult
	logger := log.FromCtx(ctx).With().Str("component", "consolidator").Str("cascade", "long_term").Logger()

	count, err := c.store.UnincorporatedCount(ctx)
	if err != nil {
		return res, err
	}
	if count < c.cfg.LongTermThreshold {
		return res, nil
	}
	res.Triggered = true
	logger.Info().Int("pending", count).Msg("cascade triggered")

	summaries, err := c.store.UnincorporatedSummaries(ctx)
	if err != nil {
		return res, err
	}
	batch := oldest(summaries, c.cfg.LongTermKeep)
	if len(batch) == 0 {
		logger.Debug().Int("keep", c.cfg.LongTermKeep).Msg("nothing to fold")
		return res, nil
	}

	base, err := c.store.GetBaseMemory(ctx)
	if err != nil {
		return res, err
	}

	facts := c.probeFacts(ctx)

	updated, err := c.complete(ctx, distillMessages(base, batch, facts))
	if err != nil {
		return res, fmt.Errorf("distill: %w", err)
	}

	if err := c.store.SetBaseMemory(ctx, updated); err != nil {
		return res, err
	}
	to := batch[len(batch)-1].ID
	if err := c.store.MarkIncorporated(ctx, to); err != nil {
		return res, err
	}

	res.Processed, res.FromID, res.ToID = len(batch), batch[0].ID, to
	logger.Info().Int("summaries", len(batch)).Msg("base memory updated")
	return res, nil
}

// probeFacts pulls general user facts as extra distillation input. Failure
// only means the distiller sees none.
func (c *Consolidator) probeFacts(ctx context.Context) []core.FactMatch {
	vec, err := c.embedder.Embed(ctx, factProbeQuery)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("fact probe embed failed")
		return nil
	}
	facts, err := c.store.SearchFacts(ctx, vec, probeFactsK)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("fact probe search failed")
		return nil
	}
	return facts
}

func (c *Consolidator) complete(ctx context.Context, msgs []core.Message) (string, error) {
	out, err := c.chat.Chat(ctx, msgs)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", core.ErrEmptyResponse
	}
	return out, nil
}

// oldest returns items minus the newest keep. items are oldest first.
func oldest[T any](items []T, keep int) []T {
	n := len(items) - keep
	if n <= 0 {
		return nil
	}
	return items[:n]
}
