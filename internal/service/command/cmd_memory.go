package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/service/memory"
)

const defaultListLimit = 10

type MemoryActions interface {
	ConsolidateNow(ctx context.Context) memory.Report
	Remember(ctx context.Context, text string, factType core.FactType) (memory.FactOutcome, error)
}

// MemoryCommand shows counters and the base memory document.
type MemoryCommand struct {
	inspector core.MemoryInspector
	formatter *ResponseFormatter
}

func NewMemoryCommand(inspector core.MemoryInspector) *MemoryCommand {
	return &MemoryCommand{inspector: inspector, formatter: NewResponseFormatter()}
}

func (c *MemoryCommand) Name() string        { return "memory" }
func (c *MemoryCommand) Description() string { return "Show memory stats and the base memory" }

func (c *MemoryCommand) Execute(ctx context.Context, _ []string) (string, error) {
	stats, err := c.inspector.Stats(ctx)
	if err != nil {
		return "", err
	}
	base, err := c.inspector.BaseMemoryInfo(ctx)
	if err != nil {
		return "", err
	}

	updated := "never"
	if base.Content != "" && !base.UpdatedAt.IsZero() {
		updated = base.UpdatedAt.Local().Format("2006-01-02 15:04")
	}

	return c.formatter.Combine(
		c.formatter.Info("Memory"),
		c.formatter.Label("Messages", fmt.Sprintf("%d (%d unsummarized)", stats.Messages, stats.UnsummarizedMessages))+
			c.formatter.Label("Facts", stats.Facts)+
			c.formatter.Label("Summaries", fmt.Sprintf("%d (%d pending)", stats.Summaries, stats.UnincorporatedSummaries))+
			c.formatter.Label("Base updated", updated),
		c.formatter.Info("Base Memory"),
		c.formatter.Quote(base.Content),
	), nil
}

type FactsCommand struct {
	inspector core.MemoryInspector
	formatter *ResponseFormatter
}

func NewFactsCommand(inspector core.MemoryInspector) *FactsCommand {
	return &FactsCommand{inspector: inspector, formatter: NewResponseFormatter()}
}

func (c *FactsCommand) Name() string        { return "facts" }
func (c *FactsCommand) Description() string { return "List the newest facts" }

func (c *FactsCommand) Execute(ctx context.Context, args []string) (string, error) {
	limit, err := parseLimit(args)
	if err != nil {
		return "", err
	}

	facts, err := c.inspector.ListFacts(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(facts) == 0 {
		return c.formatter.Combine(c.formatter.Info("Facts"), "No facts stored yet.\n"), nil
	}

	items := make([]string, len(facts))
	for i, f := range facts {
		items[i] = fmt.Sprintf("#%d [%s] %s", f.ID, f.Type, f.Content)
	}
	return c.formatter.Combine(c.formatter.Info("Facts"), c.formatter.List(items)), nil
}

type RememberCommand struct {
	memory    MemoryActions
	formatter *ResponseFormatter
}

func NewRememberCommand(memory MemoryActions) *RememberCommand {
	return &RememberCommand{memory: memory, formatter: NewResponseFormatter()}
}

func (c *RememberCommand) Name() string        { return "remember" }
func (c *RememberCommand) Description() string { return "Store a fact directly" }

func (c *RememberCommand) Execute(ctx context.Context, args []string) (string, error) {
	factType, text := parseFactArgs(args)
	if text == "" {
		return c.formatter.Usage("/remember [personal|preference|knowledge|event] <fact>"), nil
	}

	out, err := c.memory.Remember(ctx, text, factType)
	if err != nil {
		return "", err
	}
	if out.Replaced() {
		return c.formatter.Success(fmt.Sprintf("Fact #%d replaced #%d", out.ID, out.ReplacedID)), nil
	}
	return c.formatter.Success(fmt.Sprintf("Fact #%d stored", out.ID)), nil
}

type ConsolidateCommand struct {
	memory    MemoryActions
	formatter *ResponseFormatter
}

func NewConsolidateCommand(memory MemoryActions) *ConsolidateCommand {
	return &ConsolidateCommand{memory: memory, formatter: NewResponseFormatter()}
}

func (c *ConsolidateCommand) Name() string        { return "consolidate" }
func (c *ConsolidateCommand) Description() string { return "Run the summary cascades now" }

func (c *ConsolidateCommand) Execute(ctx context.Context, _ []string) (string, error) {
	rep := c.memory.ConsolidateNow(ctx)
	if rep.Err != nil {
		return "", rep.Err
	}

	return c.formatter.Combine(
		c.formatter.Info("Consolidation"),
		c.formatter.Label("Messages summarized", rep.ShortTerm.Processed)+
			c.formatter.Label("Summaries distilled", rep.LongTerm.Processed),
	), nil
}

func parseLimit(args []string) (int, error) {
	if len(args) == 0 {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive number, got %q", args[0])
	}
	return n, nil
}

// parseFactArgs treats a leading known fact type as the type and the rest
// as the fact text.
func parseFactArgs(args []string) (core.FactType, string) {
	if len(args) > 1 {
		switch t := core.FactType(strings.ToLower(args[0])); t {
		case core.FactPersonal, core.FactPreference, core.FactKnowledge, core.FactEvent:
			return t, strings.Join(args[1:], " ")
		}
	}
	return core.FactKnowledge, strings.Join(args, " ")
}
