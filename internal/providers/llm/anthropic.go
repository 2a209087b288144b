package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/retry"
)

const defaultAnthropicMaxTokens = 1024

type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retrier   *retry.Retrier
}

var _ core.ChatModel = (*Anthropic)(nil)

func NewAnthropic(apiKey, model string, maxTokens int64) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &Anthropic{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(requestTimeout),
		),
		model:     model,
		maxTokens: maxTokens,
		retrier:   retry.NewDefaultRetrier(),
	}
}

// Chat sends the conversation to the Messages API. System turns are lifted
// into the top-level system prompt.
func (a *Anthropic) Chat(ctx context.Context, messages []core.Message) (string, error) {
	system, turns := splitAnthropicMessages(messages)
	if len(turns) == 0 {
		return "", fmt.Errorf("anthropic chat: no user or assistant turns")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  turns,
	}
	if len(system) > 0 {
		params.System = system
	}

	var text string
	err := a.retrier.Do(ctx, func(ctx context.Context) error {
		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return classifyAnthropic(err)
		}

		var b strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				b.WriteString(block.AsText().Text)
			}
		}
		text = b.String()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic chat: %w", err)
	}
	return text, nil
}

func splitAnthropicMessages(messages []core.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam

	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			if m.Content != "" {
				system = append(system, anthropic.TextBlockParam{Text: m.Content})
			}
		case core.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return system, turns
}

func classifyAnthropic(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && isPermanentStatus(apiErr.StatusCode) {
		return retry.Permanent(err)
	}
	return err
}
