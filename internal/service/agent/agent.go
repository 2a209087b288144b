package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
)

// FallbackReply is returned and recorded when the chat model fails.
const FallbackReply = "Sorry, I'm having trouble thinking right now."

type HistoryRepository interface {
	AppendMessage(ctx context.Context, role core.Role, content string) (int64, error)
	RecentMessages(ctx context.Context, n int) ([]core.StoredMessage, error)
}

type MemoryRetriever interface {
	RetrieveContext(ctx context.Context, query string) core.MemoryContext
}

type ExchangeQueue interface {
	Submit(ctx context.Context, user, assistant string) bool
}

// Reply is one answered turn.
type Reply struct {
	Action Action
	Text   string
	Raw    string
}

// Agent holds one conversation. Turns are taken one at a time so the window
// and the message log keep user and assistant turns paired.
type Agent struct {
	mu sync.Mutex

	ai      core.ChatModel
	repo    HistoryRepository
	memory  MemoryRetriever
	queue   ExchangeQueue
	window  *Window
	persona string
}

func NewAgent(
	appCfg *config.AppConfig,
	ai core.ChatModel,
	repo HistoryRepository,
	memory MemoryRetriever,
	queue ExchangeQueue,
	persona string,
) *Agent {
	return &Agent{
		ai:      ai,
		repo:    repo,
		memory:  memory,
		queue:   queue,
		window:  NewWindow(appCfg.ContextWindowSize),
		persona: persona,
	}
}

// Warm fills the window from the persisted conversation log.
func (a *Agent) Warm(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	msgs, err := a.repo.RecentMessages(ctx, a.window.size)
	if err != nil {
		return fmt.Errorf("load recent messages: %w", err)
	}

	a.window.Reset()
	for _, m := range msgs {
		a.window.Add(m.Role, m.Content)
	}
	if len(msgs) > 0 {
		log.FromCtx(ctx).Info().Int("messages", len(msgs)).Msg("conversation window restored")
	}
	return nil
}

func (a *Agent) Reply(ctx context.Context, input string) (Reply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	logger := log.FromCtx(ctx)

	if _, err := a.repo.AppendMessage(ctx, core.RoleUser, input); err != nil {
		return Reply{}, fmt.Errorf("failed to save user message: %w", err)
	}
	a.window.Add(core.RoleUser, input)

	raw, err := a.ai.Chat(ctx, a.buildMessages(ctx))
	if err != nil {
		logger.Error().Err(err).Msg("chat model failed")
		raw = FallbackReply
	}

	a.window.Add(core.RoleAssistant, raw)
	if _, err := a.repo.AppendMessage(ctx, core.RoleAssistant, raw); err != nil {
		logger.Error().Err(err).Msg("failed to save assistant message")
	}

	action, text := ParseAction(raw)
	if action == ActionIgnore {
		logger.Debug().Str("input", input).Msg("model ignored input")
	} else if a.queue != nil {
		a.queue.Submit(ctx, input, text)
	}

	return Reply{Action: action, Text: text, Raw: raw}, nil
}

// Window exposes the rolling history for inspection.
func (a *Agent) Window() *Window {
	return a.window
}

func (a *Agent) buildMessages(ctx context.Context) []core.Message {
	system := a.persona
	if query, ok := a.window.LastUser(); ok && a.memory != nil {
		if mc := a.memory.RetrieveContext(ctx, query); mc.Formatted != "" {
			system += "\n\n" + mc.Formatted
		}
	}

	history := a.window.Messages()
	messages := make([]core.Message, 0, len(history)+1)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: system})
	return append(messages, history...)
}
