package bot

import (
	"context"
	"time"

	"pantry/internal/config"
	"pantry/internal/domain"
	"pantry/internal/expiry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExpirationChecker runs the expiration job on demand.
type ExpirationChecker interface {
	Run(ctx context.Context) (*expiry.Result, error)
}

// Subscriptions manages which chats receive expiration notifications.
type Subscriptions interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	Subscribe(ctx context.Context, chatID int64) (bool, error)
	Unsubscribe(ctx context.Context, chatID int64) error
}

type Bot struct {
	tgService domain.TelegramService
	config    *config.Config
	pantry    domain.PantryService
	subs      Subscriptions
	limiter   domain.RateLimiter
	checker   ExpirationChecker
	loc       *time.Location
	now       func() time.Time
	commands  map[string]commandHandler
	metrics   *Metrics
	logger    *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	pantry domain.PantryService,
	subs Subscriptions,
	limiter domain.RateLimiter,
	checker ExpirationChecker,
	metrics *Metrics,
	logger *zerolog.Logger,
) *Bot {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	b := &Bot{
		tgService: tgService,
		config:    config,
		pantry:    pantry,
		subs:      subs,
		limiter:   limiter,
		checker:   checker,
		loc:       config.Pantry.Loc(),
		now:       time.Now,
		metrics:   metrics,
		logger:    logger,
	}
	b.commands = b.commandTable()
	return b
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

// Stop stops receiving Telegram updates (best-effort).
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	b.tgService.StopReceivingUpdates()
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Per-update context.
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		msg := update.Message
		if msg == nil || msg.From == nil || msg.Chat == nil {
			return
		}

		if !b.isAllowed(msg.From.ID) {
			l.Warn().Int64("user_id", msg.From.ID).Msg("Message from unknown user ignored")
			return
		}
		if !b.allowRate(updateCtx, msg.From.ID) {
			b.sendMessage(msg.Chat.ID, "⚠️ Too many messages. Please wait a moment.")
			return
		}

		b.handleMessage(updateCtx, msg)
	})
}
