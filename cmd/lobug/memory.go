package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/service/ui"
	"github.com/spf13/cobra"
)

var (
	listLimit    int
	baseFromFile string
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and maintain the stored memory",
}

// withApp runs fn with a wired app and a logger, closing it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app, out io.Writer) error) error {
	ctx, flushLog := setupLogger(cmd.Context())
	defer flushLog()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	return fn(ctx, a, cmd.OutOrStdout())
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show counters and the base memory document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app, out io.Writer) error {
			stats, err := a.store.Stats(ctx)
			if err != nil {
				return err
			}
			base, err := a.store.BaseMemoryInfo(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, ui.TitleStyle.Render("STATS"))
			fmt.Fprintf(out, "messages      %d (%d unsummarized)\n", stats.Messages, stats.UnsummarizedMessages)
			fmt.Fprintf(out, "facts         %d\n", stats.Facts)
			fmt.Fprintf(out, "summaries     %d (%d unincorporated)\n", stats.Summaries, stats.UnincorporatedSummaries)
			fmt.Fprintf(out, "base memory   %d chars\n\n", stats.BaseMemoryChars)

			fmt.Fprintln(out, ui.TitleStyle.Render("BASE MEMORY"))
			if base.Content == "" {
				fmt.Fprintln(out, ui.DescStyle.Render("(empty)"))
				return nil
			}
			fmt.Fprintln(out, ui.DescStyle.Render("updated "+base.UpdatedAt.Local().Format("2006-01-02 15:04")))
			fmt.Fprintln(out, base.Content)
			return nil
		})
	},
}

var memorySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the memory context a message would receive",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(cmd, func(ctx context.Context, a *app, out io.Writer) error {
			vec, err := a.embedder.Embed(ctx, query)
			if err != nil {
				return err
			}
			matches, err := a.store.SearchFacts(ctx, vec, a.memCfg.RetrievalTopK)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, ui.TitleStyle.Render("NEAREST FACTS"))
			for _, m := range matches {
				marker := " "
				if m.Distance < a.memCfg.MaxFactDistance() {
					marker = "✓"
				}
				fmt.Fprintf(out, "%s %.3f  #%d %s\n", marker, m.Distance, m.ID, m.Content)
			}

			mc := a.memory.RetrieveContext(ctx, query)
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.TitleStyle.Render("CONTEXT"))
			if mc.Formatted == "" {
				fmt.Fprintln(out, ui.DescStyle.Render("(none)"))
				return nil
			}
			fmt.Fprintln(out, mc.Formatted)
			return nil
		})
	},
}

var memoryFactsCmd = &cobra.Command{
	Use:   "facts",
	Short: "List the newest facts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app, out io.Writer) error {
			facts, err := a.store.ListFacts(ctx, listLimit)
			if err != nil {
				return err
			}
			for _, f := range facts {
				fmt.Fprintf(out, "#%-5d %-10s %-10s %s\n", f.ID, f.Type, f.Source, f.Content)
			}
			return nil
		})
	},
}

var memorySummariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "List the newest summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app, out io.Writer) error {
			summaries, err := a.store.ListSummaries(ctx, listLimit)
			if err != nil {
				return err
			}
			for _, s := range summaries {
				state := "pending"
				if s.Incorporated {
					state = "incorporated"
				}
				header := fmt.Sprintf("#%d messages %d-%d, %s", s.ID, s.SourceFromID, s.SourceToID, state)
				fmt.Fprintln(out, ui.UsageStyle.Render(header))
				fmt.Fprintln(out, s.Content)
				fmt.Fprintln(out)
			}
			return nil
		})
	},
}

var memoryConsolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Run the short-term and long-term cascades now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app, out io.Writer) error {
			rep := a.memory.ConsolidateNow(ctx)
			fmt.Fprintf(out, "short-term: triggered=%t processed=%d\n", rep.ShortTerm.Triggered, rep.ShortTerm.Processed)
			fmt.Fprintf(out, "long-term:  triggered=%t processed=%d\n", rep.LongTerm.Triggered, rep.LongTerm.Processed)
			return rep.Err
		})
	},
}

var memoryRememberCmd = &cobra.Command{
	Use:   "remember <fact>",
	Short: "Store a fact directly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		factType, _ := cmd.Flags().GetString("type")
		return withApp(cmd, func(ctx context.Context, a *app, out io.Writer) error {
			res, err := a.memory.Remember(ctx, strings.Join(args, " "), core.NormalizeFactType(factType))
			if err != nil {
				return err
			}
			if res.Replaced() {
				fmt.Fprintf(out, "stored #%d (replaced #%d)\n", res.ID, res.ReplacedID)
				return nil
			}
			fmt.Fprintf(out, "stored #%d\n", res.ID)
			return nil
		})
	},
}

var memorySetBaseCmd = &cobra.Command{
	Use:   "set-base",
	Short: "Replace the base memory document from a file or stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		var src io.Reader = cmd.InOrStdin()
		if baseFromFile != "" {
			f, err := os.Open(baseFromFile)
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}

		data, err := io.ReadAll(src)
		if err != nil {
			return err
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			return errors.New("base memory content is empty")
		}

		return withApp(cmd, func(ctx context.Context, a *app, out io.Writer) error {
			if err := a.store.SetBaseMemory(ctx, content); err != nil {
				return err
			}
			fmt.Fprintf(out, "base memory updated (%d chars)\n", len(content))
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{memoryFactsCmd, memorySummariesCmd} {
		c.Flags().IntVarP(&listLimit, "limit", "n", 20, "number of rows to show")
	}
	memoryRememberCmd.Flags().StringP("type", "t", string(core.FactKnowledge), "fact type: personal, preference, knowledge or event")
	memorySetBaseCmd.Flags().StringVarP(&baseFromFile, "file", "f", "", "read the document from a file instead of stdin")

	memoryCmd.AddCommand(
		memoryShowCmd,
		memorySearchCmd,
		memoryFactsCmd,
		memorySummariesCmd,
		memoryConsolidateCmd,
		memoryRememberCmd,
		memorySetBaseCmd,
	)
	rootCmd.AddCommand(memoryCmd)
}
