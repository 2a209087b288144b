package memory

import (
	"context"
	"fmt"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
	"github.com/sandevgo/lobug/pkg/tokens"
)

type ExtractionResult struct {
	Extracted int
	Inserted  int
	Replaced  int
	Skipped   int
}

// FactOutcome reports how a single fact landed in the store.
type FactOutcome struct {
	ID         int64
	ReplacedID int64
	Distance   float64
}

func (o FactOutcome) Replaced() bool {
	return o.ReplacedID != 0
}

type Extractor struct {
	store        core.FactIndex
	chat         core.ChatModel
	embedder     core.Embedder
	dupThreshold float64
	maxTokens    int
}

func NewExtractor(store core.FactIndex, chat core.ChatModel, embedder core.Embedder, dupThreshold float64, maxTokens int) *Extractor {
	return &Extractor{
		store:        store,
		chat:         chat,
		embedder:     embedder,
		dupThreshold: dupThreshold,
		maxTokens:    maxTokens,
	}
}

// Extract asks the chat model for facts in one exchange and stores them.
// Unparsable model output means no facts. A fact that cannot be embedded
// or stored is skipped; the rest still go in.
func (e *Extractor) Extract(ctx context.Context, user, assistant string) (ExtractionResult, error) {
	var res ExtractionResult
	logger := log.FromCtx(ctx).With().Str("component", "extractor").Logger()

	user = tokens.Truncate(user, e.maxTokens)
	assistant = tokens.Truncate(assistant, e.maxTokens)

	raw, err := e.chat.Chat(ctx, extractionMessages(user, assistant))
	if err != nil {
		return res, fmt.Errorf("llm chat: %w", err)
	}

	facts, err := ParseFacts(raw)
	if err != nil {
		logger.Warn().Err(err).Str("output", truncateForLog(raw)).Msg("could not parse extracted facts")
		return res, nil
	}
	res.Extracted = len(facts)

	for _, f := range facts {
		out, err := e.StoreFact(ctx, f, core.SourceExtraction)
		if err != nil {
			res.Skipped++
			logger.Warn().Err(err).Str("fact", f.Text).Msg("fact skipped")
			continue
		}
		if out.Replaced() {
			res.Replaced++
			continue
		}
		res.Inserted++
	}

	if res.Extracted > 0 {
		logger.Info().
			Int("extracted", res.Extracted).
			Int("inserted", res.Inserted).
			Int("replaced", res.Replaced).
			Int("skipped", res.Skipped).
			Msg("facts extracted from exchange")
	}
	return res, nil
}

// StoreFact embeds the fact and inserts it. When the nearest stored fact is
// closer than the duplicate threshold it is replaced by the new one.
func (e *Extractor) StoreFact(ctx context.Context, f ExtractedFact, source string) (FactOutcome, error) {
	vec, err := e.embedder.Embed(ctx, f.Text)
	if err != nil {
		return FactOutcome{}, fmt.Errorf("embed: %w", err)
	}

	nearest, err := e.store.SearchFacts(ctx, vec, 1)
	if err != nil {
		return FactOutcome{}, fmt.Errorf("search duplicates: %w", err)
	}

	if len(nearest) > 0 && nearest[0].Distance < e.dupThreshold {
		old := nearest[0]
		id, err := e.store.ReplaceFact(ctx, old.ID, f.Text, vec, source, f.Type)
		if err != nil {
			return FactOutcome{}, fmt.Errorf("replace fact %d: %w", old.ID, err)
		}
		log.FromCtx(ctx).Debug().
			Float64("distance", old.Distance).
			Str("old", old.Content).
			Str("new", f.Text).
			Msg("replaced near-duplicate fact")
		return FactOutcome{ID: id, ReplacedID: old.ID, Distance: old.Distance}, nil
	}

	id, err := e.store.InsertFact(ctx, f.Text, vec, source, f.Type)
	if err != nil {
		return FactOutcome{}, fmt.Errorf("insert fact: %w", err)
	}
	return FactOutcome{ID: id}, nil
}

func truncateForLog(s string) string {
	const max = 200
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
