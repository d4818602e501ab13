package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"pantry/internal/domain"
	"pantry/internal/models"

	"github.com/rs/zerolog"
)

// TelegramSink sends each slot as one message per chat. A new message for
// a slot replaces the previous one, so repeated runs on the same day leave
// a single message behind.
type TelegramSink struct {
	tg     domain.TelegramService
	prefs  *Preferences
	store  domain.SettingsStore
	logger *zerolog.Logger
}

func NewTelegramSink(tg domain.TelegramService, prefs *Preferences, store domain.SettingsStore, logger *zerolog.Logger) *TelegramSink {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &TelegramSink{tg: tg, prefs: prefs, store: store, logger: logger}
}

// Allowed is true when notifications are switched on and someone listens.
func (s *TelegramSink) Allowed(ctx context.Context) bool {
	enabled, err := s.prefs.Enabled(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read notification preferences")
		return false
	}
	if !enabled {
		return false
	}
	chats, err := s.prefs.Chats(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read notification chats")
		return false
	}
	return len(chats) > 0
}

func slotKey(chatID int64, slot int) string {
	return fmt.Sprintf("%s%d_%d", models.KeyNotifySlotPrefix, chatID, slot)
}

func (s *TelegramSink) Notify(ctx context.Context, n models.Notification) error {
	chats, err := s.prefs.Chats(ctx)
	if err != nil {
		return err
	}

	text := FormatText(n)
	var errs []error
	for _, chatID := range chats {
		key := slotKey(chatID, n.Slot)
		msg, err := s.tg.SendMessage(chatID, text)
		if err != nil {
			// the previous notification stays until a send succeeds
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			continue
		}

		if raw, ok, err := s.store.Get(ctx, key); err == nil && ok {
			if prev, err := strconv.Atoi(raw); err == nil && prev != msg.MessageID {
				if err := s.tg.DeleteMessage(chatID, prev); err != nil {
					s.logger.Debug().Err(err).Int64("chat_id", chatID).Int("message_id", prev).Msg("previous notification not deleted")
				}
			}
		}
		if err := s.store.Set(ctx, key, strconv.Itoa(msg.MessageID)); err != nil {
			s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to remember notification message")
		}
	}
	return errors.Join(errs...)
}

// FormatText renders a notification as a chat message.
func FormatText(n models.Notification) string {
	return "🔔 " + n.Title + "\n" + n.Body
}

// LogSink writes notifications to the log. Used when no chat transport is configured.
type LogSink struct {
	logger *zerolog.Logger
}

func NewLogSink(logger *zerolog.Logger) *LogSink {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Allowed(context.Context) bool { return true }

func (s *LogSink) Notify(_ context.Context, n models.Notification) error {
	s.logger.Info().Int("slot", n.Slot).Str("title", n.Title).Str("body", n.Body).Msg("notification")
	return nil
}
