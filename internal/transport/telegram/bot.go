package telegram

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

const baseContextKey = "base_context"

// AgentRunner is the slice of the agent the bot drives.
type AgentRunner interface {
	RunStream(ctx context.Context, sessionID, userText string, sink core.EventSink) (string, string, error)
}

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	agent   AgentRunner
	sender  *sender
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	agent AgentRunner,
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
		bot:     b,
		cfg:     cfg,
		agent:   agent,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	// Text deltas are skipped: Telegram has no useful way to stream them,
	// the final text goes out in one piece below.
	_, text, err := b.agent.RunStream(ctx, sessionID, c.Text(), func(ev core.Event) {
		if ev.Type == core.EventToolStart {
			_ = c.Send(fmt.Sprintf("\U0001F6E0 Executing: %s", ev.Tool))
			_ = c.Notify(tele.Typing)
		}
	})
	if err != nil {
		logger.Error().Err(err).Str("session", sessionID).Msg("agent run failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	if err := b.sender.sendMarkdown(ctx, c.Chat(), text, false); err != nil {
		logger.Error().Err(err).Msg("failed to send telegram message")
	}
	return nil
}
