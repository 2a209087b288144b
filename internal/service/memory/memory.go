package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
)

// Report collects what one processing pass did. Err joins every contained
// failure; it is informational and never stops later steps.
type Report struct {
	Extraction ExtractionResult
	ShortTerm  CascadeResult
	LongTerm   CascadeResult
	Err        error
}

type Service struct {
	retriever    *Retriever
	extractor    *Extractor
	consolidator *Consolidator
}

func NewService(store core.MemoryStore, chat core.ChatModel, embedder core.Embedder, cfg config.MemoryConfig) *Service {
	return &Service{
		retriever: NewRetriever(store, embedder, cfg.RetrievalTopK, cfg.RetrievalMinSimilarity, cfg.RetrievalTimeout),
		extractor: NewExtractor(store, chat, embedder, cfg.DuplicateDistanceThreshold, cfg.ExtractionMaxTokens),
		consolidator: NewConsolidator(store, chat, embedder, CascadeConfig{
			ShortTermThreshold: cfg.ShortTermThreshold,
			ShortTermKeep:      cfg.ShortTermKeep,
			LongTermThreshold:  cfg.LongTermThreshold,
			LongTermKeep:       cfg.LongTermKeep,
		}),
	}
}

func (s *Service) RetrieveContext(ctx context.Context, query string) core.MemoryContext {
	return s.retriever.RetrieveContext(ctx, query)
}

// ProcessExchange extracts facts from one exchange, then runs the short-term
// and long-term cascades. Each step is isolated: its failure is logged and
// the next step still runs.
func (s *Service) ProcessExchange(ctx context.Context, user, assistant string) Report {
	var rep Report
	var errs []error

	errs = append(errs, contain(ctx, "fact extraction", func() (err error) {
		rep.Extraction, err = s.extractor.Extract(ctx, user, assistant)
		return err
	}))

	rep.ShortTerm, rep.LongTerm, rep.Err = s.cascades(ctx)
	rep.Err = errors.Join(append(errs, rep.Err)...)
	return rep
}

// ConsolidateNow runs both cascades without extracting anything.
func (s *Service) ConsolidateNow(ctx context.Context) Report {
	var rep Report
	rep.ShortTerm, rep.LongTerm, rep.Err = s.cascades(ctx)
	return rep
}

// Remember stores an operator-supplied fact with the same dedup rule as
// extraction.
func (s *Service) Remember(ctx context.Context, text string, factType core.FactType) (FactOutcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return FactOutcome{}, errors.New("fact text is empty")
	}
	if factType == "" {
		factType = core.FactKnowledge
	}
	return s.extractor.StoreFact(ctx, ExtractedFact{Text: text, Type: factType}, core.SourceManual)
}

func (s *Service) cascades(ctx context.Context) (short, long CascadeResult, err error) {
	e1 := contain(ctx, "short-term cascade", func() (err error) {
		short, err = s.consolidator.RunShortTerm(ctx)
		return err
	})
	e2 := contain(ctx, "long-term cascade", func() (err error) {
		long, err = s.consolidator.RunLongTerm(ctx)
		return err
	})
	return short, long, errors.Join(e1, e2)
}

// contain runs step, converting a panic into an error, and logs any failure.
func contain(ctx context.Context, step string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", step, p)
		}
		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("step", step).Msg("memory step failed")
			err = fmt.Errorf("%s: %w", step, err)
		}
	}()
	return fn()
}
