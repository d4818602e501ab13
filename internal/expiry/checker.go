package expiry

import (
	"context"
	"fmt"
	"time"

	"pantry/internal/domain"
	"pantry/internal/metrics"
	"pantry/internal/models"

	"github.com/rs/zerolog"
)

// Checker is the periodic expiration job.
type Checker struct {
	items  domain.ItemRepository
	sink   domain.NotificationSink
	loc    *time.Location
	logger *zerolog.Logger
	now    func() time.Time
}

func NewChecker(items domain.ItemRepository, sink domain.NotificationSink, loc *time.Location, logger *zerolog.Logger) *Checker {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Checker{
		items:  items,
		sink:   sink,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Result summarises one run.
type Result struct {
	DueToday []models.ExpiringEntry
	DueSoon  []models.ExpiringEntry
	Sent     int
	Skipped  bool
}

// Run classifies all items and dispatches notifications. Only a failed item
// query is an error; a denied or failing sink is logged and the run succeeds.
func (c *Checker) Run(ctx context.Context) (*Result, error) {
	items, err := c.items.GetAllItems(ctx)
	if err != nil {
		metrics.IncExpirationRun("error")
		return nil, fmt.Errorf("load items for expiration check: %w", err)
	}

	today := Normalize(c.now().In(c.loc))
	res := &Result{}
	res.DueToday, res.DueSoon = Classify(items, today)
	metrics.SetExpiring(len(res.DueToday), len(res.DueSoon))

	notes := Notifications(res.DueToday, res.DueSoon)
	if len(notes) == 0 {
		metrics.IncExpirationRun("ok")
		return res, nil
	}

	if c.sink == nil || !c.sink.Allowed(ctx) {
		c.logger.Debug().Int("notifications", len(notes)).Msg("notifications not permitted, skipping dispatch")
		for _, n := range notes {
			metrics.IncNotification(n.Slot, "skipped")
		}
		res.Skipped = true
		metrics.IncExpirationRun("ok")
		return res, nil
	}

	for _, n := range notes {
		if err := c.sink.Notify(ctx, n); err != nil {
			c.logger.Warn().Err(err).Int("slot", n.Slot).Msg("Failed to deliver expiration notification")
			metrics.IncNotification(n.Slot, "failed")
			continue
		}
		res.Sent++
		metrics.IncNotification(n.Slot, "sent")
	}

	c.logger.Info().
		Int("due_today", len(res.DueToday)).
		Int("due_soon", len(res.DueSoon)).
		Int("sent", res.Sent).
		Msg("Expiration check finished")
	metrics.IncExpirationRun("ok")
	return res, nil
}

// Job adapts Run to the scheduler's job signature.
func (c *Checker) Job(ctx context.Context) error {
	_, err := c.Run(ctx)
	return err
}
