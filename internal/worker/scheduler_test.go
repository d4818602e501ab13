package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"pantry/internal/models"
	"pantry/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunOnce(t *testing.T) {
	store := repository.NewMemorySettingsStore()
	s := NewScheduler(store, RetryPolicy{}, nil)
	ctx := context.Background()

	release := make(chan struct{})
	var calls atomic.Int32
	job := func(context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}

	assert.True(t, s.RunOnce(ctx, "check", job))
	// a second run of the same name is dropped while the first is in flight
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.RunOnce(ctx, "check", job))

	close(release)
	s.Stop()

	assert.Equal(t, int32(1), calls.Load())
	_, ok := s.LastRun(ctx, "check")
	assert.True(t, ok)
}

func TestSchedulerRunOnceRetries(t *testing.T) {
	s := NewScheduler(repository.NewMemorySettingsStore(), RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond}, nil)
	ctx := context.Background()

	var calls atomic.Int32
	s.RunOnce(ctx, "flaky", func(context.Context) error {
		if calls.Add(1) < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	s.Stop()

	assert.Equal(t, int32(2), calls.Load())
}

func TestSchedulerFailedRunIsNotRecorded(t *testing.T) {
	s := NewScheduler(repository.NewMemorySettingsStore(), RetryPolicy{}, nil)
	ctx := context.Background()

	s.RunOnce(ctx, "broken", func(context.Context) error { return errors.New("boom") })
	s.Stop()

	_, ok := s.LastRun(ctx, "broken")
	assert.False(t, ok)
}

func TestSchedulePeriodicKeepsExisting(t *testing.T) {
	s := NewScheduler(repository.NewMemorySettingsStore(), RetryPolicy{}, nil)
	ctx := context.Background()
	defer s.Stop()

	noop := func(context.Context) error { return nil }

	ok, err := s.SchedulePeriodic(ctx, models.ExpirationJobName, time.Hour, noop)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SchedulePeriodic(ctx, models.ExpirationJobName, time.Minute, noop)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.SchedulePeriodic(ctx, "bad", 0, noop)
	assert.Error(t, err)

	assert.True(t, s.Cancel(models.ExpirationJobName))
	assert.False(t, s.Cancel(models.ExpirationJobName))
}

func TestSchedulePeriodicRuns(t *testing.T) {
	s := NewScheduler(repository.NewMemorySettingsStore(), RetryPolicy{}, nil)
	ctx := context.Background()

	var calls atomic.Int32
	_, err := s.SchedulePeriodic(ctx, "tick", 10*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestFirstDelayUsesPersistedRun(t *testing.T) {
	store := repository.NewMemorySettingsStore()
	s := NewScheduler(store, RetryPolicy{}, nil)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	assert.Equal(t, 24*time.Hour, s.firstDelay(ctx, "job", 24*time.Hour))

	require.NoError(t, s.recordRun(ctx, "job", now.Add(-20*time.Hour)))
	assert.Equal(t, 4*time.Hour, s.firstDelay(ctx, "job", 24*time.Hour))

	require.NoError(t, s.recordRun(ctx, "job", now.Add(-30*time.Hour)))
	assert.Equal(t, time.Duration(0), s.firstDelay(ctx, "job", 24*time.Hour))

	require.NoError(t, s.recordRun(ctx, "job", now.Add(5*time.Hour)))
	assert.Equal(t, 24*time.Hour, s.firstDelay(ctx, "job", 24*time.Hour))
}
