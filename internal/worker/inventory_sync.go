package worker

import (
	"context"
	"time"

	"pantry/internal/domain"
	"pantry/internal/events"

	"github.com/rs/zerolog"
)

// InventorySyncWorker pushes full inventory snapshots to a mirror.
// Triggers arriving while a push is pending collapse into one.
type InventorySyncWorker struct {
	items    domain.ItemRepository
	mirror   domain.InventoryMirror
	retry    RetryPolicy
	trigger  chan struct{}
	debounce time.Duration
	logger   *zerolog.Logger
}

func NewInventorySyncWorker(items domain.ItemRepository, mirror domain.InventoryMirror, retry RetryPolicy, logger *zerolog.Logger) *InventorySyncWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &InventorySyncWorker{
		items:    items,
		mirror:   mirror,
		retry:    retry,
		trigger:  make(chan struct{}, 1),
		debounce: 2 * time.Second,
		logger:   logger,
	}
}

// Trigger requests a sync without blocking.
func (w *InventorySyncWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Subscribe triggers a sync on every inventory event of the bus.
func (w *InventorySyncWorker) Subscribe(bus *events.EventBus) {
	bus.Subscribe(func(*events.Event) error {
		w.Trigger()
		return nil
	}, events.InventoryEvents...)
}

// Start syncs once, then on every trigger, until ctx is done.
func (w *InventorySyncWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("inventory sync worker started")
	defer w.logger.Info().Msg("inventory sync worker stopped")

	w.Trigger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}

		if w.debounce > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.debounce):
			}
		}
		// drop triggers that arrived during the debounce; this sync covers them
		select {
		case <-w.trigger:
		default:
		}

		if err := w.SyncNow(ctx); err != nil {
			w.logger.Error().Err(err).Msg("inventory sync failed")
		}
	}
}

// SyncNow pushes the current inventory with retries.
func (w *InventorySyncWorker) SyncNow(ctx context.Context) error {
	return w.retry.Do(ctx, func(ctx context.Context) error {
		items, err := w.items.GetAllItems(ctx)
		if err != nil {
			return err
		}
		return w.mirror.ReplaceInventory(ctx, items)
	}, func(attempt int, err error, wait time.Duration) {
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("inventory sync retry")
	})
}
