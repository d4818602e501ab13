package bot

import (
	"context"
	"slices"
	"time"
)

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

// isAllowed: an empty allow-list admits everyone.
func (b *Bot) isAllowed(userID int64) bool {
	allowed := b.config.Telegram.AllowedUsers
	return len(allowed) == 0 || slices.Contains(allowed, userID)
}

func (b *Bot) allowRate(ctx context.Context, userID int64) bool {
	if b.limiter == nil {
		return true
	}
	window := time.Duration(b.config.Bot.RateLimitWindow) * time.Second
	allowed, err := b.limiter.CheckRateLimit(ctx, userID, b.config.Bot.RateLimitMessages, window)
	if err != nil {
		// fail open, the store may be down
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
		return true
	}
	if !allowed {
		b.logger.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
		if b.metrics != nil {
			b.metrics.RateLimited.Inc()
		}
	}
	return allowed
}
