package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Run_StateTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		job            Job
		expectedResult State
		expectedError  string
	}{
		{
			name:           "success",
			job:            func(ctx context.Context) error { return nil },
			expectedResult: StateSucceeded,
		},
		{
			name:           "error",
			job:            func(ctx context.Context) error { return errors.New("market data connectivity: http 502") },
			expectedResult: StateFailed,
			expectedError:  "market data connectivity: http 502",
		},
		{
			name:           "panic is recovered",
			job:            func(ctx context.Context) error { panic("boom") },
			expectedResult: StateFailed,
			expectedError:  "panic: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := New(time.UTC)
			t.Cleanup(s.Stop)
			require.NoError(t, s.reserve("job"))

			var during State
			s.run("job", func(ctx context.Context) error {
				st, _ := s.Status("job")
				during = st.State
				return tt.job(ctx)
			})

			st, ok := s.Status("job")
			require.True(t, ok)
			assert.Equal(t, StateRunning, during)
			assert.Equal(t, StateScheduled, st.State)
			assert.Equal(t, tt.expectedResult, st.LastResult)
			assert.Equal(t, tt.expectedError, st.LastError)
			assert.Equal(t, 1, st.Runs)
		})
	}
}

func TestScheduler_Run_FailureThenSuccessClearsError(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	t.Cleanup(s.Stop)
	require.NoError(t, s.reserve("sync"))

	s.run("sync", func(ctx context.Context) error { return errors.New("down") })
	s.run("sync", func(ctx context.Context) error { return nil })

	st, _ := s.Status("sync")
	assert.Equal(t, StateSucceeded, st.LastResult)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 2, st.Runs)
}

func TestScheduler_Every_KeepsFiringAfterFailures(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	var calls atomic.Int32
	require.NoError(t, s.Every("flaky", 20*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("always fails")
	}))

	s.Start()
	t.Cleanup(s.Stop)

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	st, _ := s.Status("flaky")
	assert.Equal(t, StateFailed, st.LastResult)
}

func TestScheduler_SingleWorker(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	var running, maxRunning atomic.Int32
	job := func(ctx context.Context) error {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		running.Add(-1)
		return nil
	}
	require.NoError(t, s.Every("a", 10*time.Millisecond, job))
	require.NoError(t, s.Every("b", 10*time.Millisecond, job))

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestScheduler_JobDoesNotOverlapItself(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	var running, overlaps, runs atomic.Int32
	require.NoError(t, s.Every("slow", 10*time.Millisecond, func(ctx context.Context) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		runs.Add(1)
		time.Sleep(30 * time.Millisecond)
		running.Add(-1)
		return nil
	}))

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(2))
	assert.Zero(t, overlaps.Load())
}

func TestScheduler_Registration(t *testing.T) {
	t.Parallel()

	noop := func(ctx context.Context) error { return nil }

	t.Run("invalid interval", func(t *testing.T) {
		s := New(time.UTC)
		assert.ErrorIs(t, s.Every("hb", 0, noop), ErrInvalidInterval)
	})

	t.Run("invalid time", func(t *testing.T) {
		s := New(time.UTC)
		assert.ErrorIs(t, s.DailyAt("sync", 24, 0, noop), ErrInvalidTime)
		assert.ErrorIs(t, s.DailyAt("sync", 1, 60, noop), ErrInvalidTime)
		assert.ErrorIs(t, s.DailyAt("sync", -1, 0, noop), ErrInvalidTime)
	})

	t.Run("duplicate name", func(t *testing.T) {
		s := New(time.UTC)
		require.NoError(t, s.Every("hb", time.Minute, noop))
		assert.ErrorIs(t, s.DailyAt("hb", 1, 0, noop), ErrDuplicateJob)
	})

	t.Run("daily trigger anchored to location", func(t *testing.T) {
		loc := time.FixedZone("JST", 9*60*60)
		s := New(loc)
		require.NoError(t, s.DailyAt("sync", 1, 30, noop))
		s.Start()
		t.Cleanup(s.Stop)

		next, ok := s.NextRun("sync")
		require.True(t, ok)
		next = next.In(loc)
		assert.Equal(t, 1, next.Hour())
		assert.Equal(t, 30, next.Minute())

		st, ok := s.Status("sync")
		require.True(t, ok)
		assert.Equal(t, StateScheduled, st.State)
		assert.Zero(t, st.Runs)
	})
}

func TestScheduler_Stop(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	cancelled := make(chan struct{})
	require.NoError(t, s.Every("long", time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))

	s.Start()
	assert.Eventually(t, func() bool {
		st, _ := s.Status("long")
		return st.State == StateRunning
	}, time.Second, 5*time.Millisecond)

	s.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight job was not cancelled")
	}
	assert.Eventually(t, func() bool {
		st, _ := s.Status("long")
		return st.State == StateStopped
	}, time.Second, 5*time.Millisecond)

	_, ok := s.Status("missing")
	assert.False(t, ok)
}

func TestScheduler_WithErrorKind(t *testing.T) {
	t.Parallel()

	var classified error
	s := New(time.UTC, WithErrorKind(func(err error) string {
		classified = err
		return "connectivity"
	}))
	t.Cleanup(s.Stop)
	require.NoError(t, s.reserve("sync"))

	jobErr := errors.New("http 502")
	s.run("sync", func(ctx context.Context) error { return jobErr })

	assert.ErrorIs(t, classified, jobErr)
}
