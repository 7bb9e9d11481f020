package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Runner owns the Telegram long-poll loop and dispatches each update to
// the handler. Messages are processed concurrently with no ordering
// guarantee beyond what update delivery provides.
type Runner struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	logger  *slog.Logger
	cancel  context.CancelFunc
	stop    sync.Once
}

// NewRunner creates a runner over an authorized bot connection.
func NewRunner(log *slog.Logger, bot *tgbotapi.BotAPI, handler *Handler) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		bot:     bot,
		handler: handler,
		logger:  log.With(slog.String("component", "ingest-runner")),
	}
}

// Start begins long-polling in a background goroutine and returns
// immediately.
func (r *Runner) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := r.bot.GetUpdatesChan(updateConfig)

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.logger.Info("listening for channel posts")

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					r.logger.Info("updates channel closed")
					return
				}
				msg := update.Message
				if msg == nil {
					// Channel posts arrive as ChannelPost, not Message.
					msg = update.ChannelPost
				}
				if msg == nil {
					continue
				}
				go func(m *tgbotapi.Message) {
					if err := r.handler.Handle(runCtx, m); err != nil {
						r.logger.Error("ingest failed",
							slog.Int("message_id", m.MessageID),
							slog.Any("error", err),
						)
					}
				}(msg)
			}
		}
	}()
}

// Stop cancels the poll loop. StopReceivingUpdates closes the bot's
// shutdown channel and must run exactly once; Stop is safe to call more
// than once.
func (r *Runner) Stop() {
	r.stop.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		r.bot.StopReceivingUpdates()
		r.logger.Info("stopped")
	})
}

// ChannelAnnouncer posts acknowledgment messages to a channel by username.
type ChannelAnnouncer struct {
	bot     *tgbotapi.BotAPI
	channel string
}

// NewChannelAnnouncer creates an announcer targeting the given channel
// (leading @ optional).
func NewChannelAnnouncer(bot *tgbotapi.BotAPI, channel string) *ChannelAnnouncer {
	channel = strings.TrimSpace(channel)
	if !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}
	return &ChannelAnnouncer{bot: bot, channel: channel}
}

// Announce sends a plain text message to the channel.
func (a *ChannelAnnouncer) Announce(_ context.Context, text string) error {
	_, err := a.bot.Send(tgbotapi.NewMessageToChannel(a.channel, text))
	return err
}
