package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pantry/internal/domain"
	"pantry/internal/models"

	"github.com/rs/zerolog"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs uniquely named jobs. Periodic jobs persist their last
// successful run in the settings store, so the period is kept across restarts.
type Scheduler struct {
	store  domain.SettingsStore
	retry  RetryPolicy
	logger *zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	periodic map[string]context.CancelFunc
	running  map[string]bool
	wg       sync.WaitGroup
}

func NewScheduler(store domain.SettingsStore, retry RetryPolicy, logger *zerolog.Logger) *Scheduler {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Scheduler{
		store:    store,
		retry:    retry,
		logger:   logger,
		now:      time.Now,
		periodic: make(map[string]context.CancelFunc),
		running:  make(map[string]bool),
	}
}

// RunOnce starts job in the background. It returns false, and does nothing,
// while a run of the same name is still in progress.
func (s *Scheduler) RunOnce(ctx context.Context, name string, job Job) bool {
	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		s.logger.Debug().Str("job", name).Msg("job already running, keeping existing run")
		return false
	}
	s.running[name] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.running, name)
			s.mu.Unlock()
		}()
		s.execute(ctx, name, job)
	}()
	return true
}

// SchedulePeriodic runs job every period. An existing schedule with the same
// name is kept and false is returned.
func (s *Scheduler) SchedulePeriodic(ctx context.Context, name string, period time.Duration, job Job) (bool, error) {
	if period <= 0 {
		return false, fmt.Errorf("period must be positive, got %s", period)
	}

	s.mu.Lock()
	if _, exists := s.periodic[name]; exists {
		s.mu.Unlock()
		s.logger.Debug().Str("job", name).Msg("job already scheduled, keeping existing schedule")
		return false, nil
	}
	jobCtx, cancel := context.WithCancel(ctx)
	s.periodic[name] = cancel
	s.mu.Unlock()

	first := s.firstDelay(jobCtx, name, period)
	s.logger.Info().Str("job", name).Dur("period", period).Dur("first_run_in", first).Msg("Periodic job scheduled")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(first)
		defer timer.Stop()
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-timer.C:
			}
			s.execute(jobCtx, name, job)
			timer.Reset(period)
		}
	}()
	return true, nil
}

// firstDelay waits out the rest of the period since the last recorded run;
// with no record the first run is one full period away.
func (s *Scheduler) firstDelay(ctx context.Context, name string, period time.Duration) time.Duration {
	last, ok := s.LastRun(ctx, name)
	if !ok {
		return period
	}
	remaining := last.Add(period).Sub(s.now())
	if remaining < 0 {
		return 0
	}
	if remaining > period {
		// clock moved backwards
		return period
	}
	return remaining
}

func (s *Scheduler) execute(ctx context.Context, name string, job Job) {
	start := s.now()
	err := s.retry.Do(ctx, job, func(attempt int, err error, wait time.Duration) {
		s.logger.Warn().Err(err).Str("job", name).Int("attempt", attempt).Dur("retry_in", wait).Msg("Job failed, retrying")
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Str("job", name).Msg("Job failed")
		}
		return
	}

	if err := s.recordRun(ctx, name, start); err != nil {
		s.logger.Warn().Err(err).Str("job", name).Msg("Failed to record job run")
	}
	s.logger.Debug().Str("job", name).Dur("took", s.now().Sub(start)).Msg("job finished")
}

func (s *Scheduler) recordRun(ctx context.Context, name string, at time.Time) error {
	if s.store == nil {
		return nil
	}
	return s.store.Set(ctx, models.KeyJobLastRunPrefix+name, at.UTC().Format(time.RFC3339Nano))
}

// LastRun returns the last successful run of a job.
func (s *Scheduler) LastRun(ctx context.Context, name string) (time.Time, bool) {
	if s.store == nil {
		return time.Time{}, false
	}
	raw, ok, err := s.store.Get(ctx, models.KeyJobLastRunPrefix+name)
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Cancel stops a periodic job; it reports whether one was scheduled.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.periodic[name]
	if ok {
		cancel()
		delete(s.periodic, name)
	}
	return ok
}

// Stop cancels every periodic job and waits for in-flight runs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for name, cancel := range s.periodic {
		cancel()
		delete(s.periodic, name)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
