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

func TestScheduler_RunsJobOnStart(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Every("refresh", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))
	assert.Equal(t, 1, s.Len())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Every("tick", time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Every("flaky", time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("upstream down")
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := New()
	err := s.Every("bad", 0, func(context.Context) error { return nil })
	assert.ErrorContains(t, err, "interval must be positive")
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := New()
	started := make(chan struct{})
	done := make(chan error, 1)
	require.NoError(t, s.Every("blocking", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	}))

	s.Start()
	<-started
	s.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe cancellation")
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Every("once", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	s.Start()
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}
