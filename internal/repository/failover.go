package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pantry/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverSettingsStore keeps the durable copy of every setting in fallback
// and mirrors it into primary, which serves reads while it is reachable.
// Writes always land in fallback first. After an outage primary is only used
// again once it has been resynced from fallback, so nothing written while it
// was down is lost.
type FailoverSettingsStore struct {
	primary  domain.SettingsStore
	fallback domain.SettingsStore
	logger   *zerolog.Logger

	isDown    atomic.Bool
	synced    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
	syncMu    sync.Mutex
}

func NewFailoverSettingsStore(primary, fallback domain.SettingsStore, logger *zerolog.Logger) *FailoverSettingsStore {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &FailoverSettingsStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSettingsStore) markDown(err error) {
	r.synced.Store(false)
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary settings store failed, falling back")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether the next call should try primary.
func (r *FailoverSettingsStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.lastCheck) > recoveryInterval
}

func (r *FailoverSettingsStore) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary settings store recovered")
	}
}

// primaryReady resyncs primary when needed and reports whether it may be used.
func (r *FailoverSettingsStore) primaryReady(ctx context.Context) bool {
	if !r.usePrimary() {
		return false
	}
	if r.synced.Load() {
		return true
	}

	r.syncMu.Lock()
	defer r.syncMu.Unlock()
	if r.synced.Load() {
		return true
	}
	if err := r.resync(ctx); err != nil {
		r.markDown(err)
		return false
	}
	r.synced.Store(true)
	r.recovered()
	return true
}

// resync makes primary an exact copy of fallback.
func (r *FailoverSettingsStore) resync(ctx context.Context) error {
	keys, err := r.fallback.Keys(ctx, "")
	if err != nil {
		return fmt.Errorf("list local settings: %w", err)
	}

	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		v, ok, err := r.fallback.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("read local setting %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if err := r.primary.Set(ctx, k, v); err != nil {
			return err
		}
		want[k] = true
	}

	current, err := r.primary.Keys(ctx, "")
	if err != nil {
		return err
	}
	var stale []string
	for _, k := range current {
		if !want[k] {
			stale = append(stale, k)
		}
	}
	if len(stale) > 0 {
		if err := r.primary.Delete(ctx, stale...); err != nil {
			return err
		}
	}

	r.logger.Debug().Int("keys", len(want)).Int("stale", len(stale)).Msg("settings resynced to primary")
	return nil
}

func (r *FailoverSettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	if r.primaryReady(ctx) {
		v, ok, err := r.primary.Get(ctx, key)
		if err == nil && ok {
			return v, true, nil
		}
		if err != nil {
			r.markDown(err)
		}
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverSettingsStore) Set(ctx context.Context, key, value string) error {
	if err := r.fallback.Set(ctx, key, value); err != nil {
		return err
	}
	if r.primaryReady(ctx) {
		if err := r.primary.Set(ctx, key, value); err != nil {
			r.markDown(err)
		}
	}
	return nil
}

func (r *FailoverSettingsStore) Delete(ctx context.Context, keys ...string) error {
	if err := r.fallback.Delete(ctx, keys...); err != nil {
		return err
	}
	if r.primaryReady(ctx) {
		if err := r.primary.Delete(ctx, keys...); err != nil {
			r.markDown(err)
		}
	}
	return nil
}

// Keys reads the durable copy, which is always complete.
func (r *FailoverSettingsStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return r.fallback.Keys(ctx, prefix)
}
