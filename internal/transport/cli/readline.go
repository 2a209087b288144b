package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/service/agent"
	"github.com/sandevgo/lobug/internal/service/ui"
	"github.com/sandevgo/lobug/pkg/log"
)

type Replier interface {
	Reply(ctx context.Context, input string) (agent.Reply, error)
}

// ReadLine is the interactive terminal transport.
type ReadLine struct {
	agent    Replier
	commands core.CmdRouter
	rl       *readline.Instance
	onExit   func()
}

// NewReadLine prepares the prompt. onExit is called when the user leaves the
// REPL so the owning command can wind down.
func NewReadLine(cfg *config.AppConfig, agent Replier, commands core.CmdRouter, onExit func()) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.UsageStyle.Render("you›") + " ",
		HistoryFile:     cfg.GetHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(commands),
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		agent:    agent,
		commands: commands,
		rl:       rl,
		onExit:   onExit,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	defer func() {
		if r.onExit != nil {
			r.onExit()
		}
	}()

	logger := log.FromCtx(ctx)
	logger.Info().Msg("chat started, type 'exit' to quit or /help for commands")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		out, quit := r.handleLine(ctx, line)
		if quit {
			return nil
		}
		if out != "" {
			fmt.Fprintln(r.rl.Stdout(), out)
		}
	}
}

func (r *ReadLine) Shutdown(context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

// handleLine runs one input line and returns what to print.
func (r *ReadLine) handleLine(ctx context.Context, line string) (string, bool) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return "", false
	case "exit", "quit":
		return "", true
	}

	if r.commands != nil {
		if out, ok := r.commands.Execute(ctx, line); ok {
			return strings.TrimRight(out, "\n"), false
		}
	}

	reply, err := r.agent.Reply(ctx, line)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("reply failed")
		return ui.RenderError(err), false
	}
	return ui.RenderReply(string(reply.Action), reply.Text), false
}

func completer(commands core.CmdRouter) readline.AutoCompleter {
	if commands == nil {
		return nil
	}
	items := make([]readline.PrefixCompleterInterface, 0)
	for _, cmd := range commands.ListCommands() {
		items = append(items, readline.PcItem("/"+cmd.Name()))
	}
	return readline.NewPrefixCompleter(items...)
}
