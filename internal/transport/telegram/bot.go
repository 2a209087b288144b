package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/service/agent"
	"github.com/sandevgo/lobug/pkg/conv"
	"github.com/sandevgo/lobug/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Replier interface {
	Reply(ctx context.Context, input string) (agent.Reply, error)
}

type Bot struct {
	bot      *tele.Bot
	agent    Replier
	commands core.CmdRouter
	ownerID  int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	agent Replier,
	commands core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		agent:    agent,
		commands: commands,
		ownerID:  cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})
	b.Use(ownerOnly(cfg.OwnerID))

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Int64("owner", b.ownerID).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(context.Context) error {
	b.bot.Stop()
	return nil
}

// ownerOnly drops updates from anyone but the owner.
func ownerOnly(ownerID int64) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != ownerID {
				return nil
			}
			return next(c)
		}
	}
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	out, err := b.respond(ctx, c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("reply failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	for i, chunk := range conv.TelegramChunks(out) {
		if err := c.Send(chunk, tele.ModeHTML); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram message")
			return err
		}
	}
	return nil
}

// respond returns the Markdown to send back. Ignored input yields nothing.
func (b *Bot) respond(ctx context.Context, text string) (string, error) {
	if b.commands != nil {
		if out, ok := b.commands.Execute(ctx, text); ok {
			return out, nil
		}
	}

	reply, err := b.agent.Reply(ctx, text)
	if err != nil {
		return "", err
	}

	switch reply.Action {
	case agent.ActionIgnore:
		return "", nil
	case agent.ActionReact:
		return "_" + reply.Text + "_", nil
	}
	return reply.Text, nil
}
