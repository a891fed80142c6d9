package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUntil_ImmediateSuccess(t *testing.T) {
	t.Parallel()
	attempts := 0

	outcome := WaitUntil(context.Background(), Check{
		Label:    "already-true",
		Interval: 10 * time.Millisecond,
		Deadline: time.Second,
		Probe: func(_ context.Context) (bool, error) {
			attempts++
			return true, nil
		},
	})

	assert.True(t, outcome.Satisfied)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, attempts)
}

func TestWaitUntil_DeadlineShorterThanInterval(t *testing.T) {
	t.Parallel()
	attempts := 0

	outcome := WaitUntil(context.Background(), Check{
		Label:    "degenerate",
		Interval: time.Second,
		Deadline: 10 * time.Millisecond,
		Probe: func(_ context.Context) (bool, error) {
			attempts++
			return false, nil
		},
	})

	assert.False(t, outcome.Satisfied)
	assert.Equal(t, 1, attempts, "predicate must be evaluated at most once")
}

func TestWaitUntil_EventuallySatisfied(t *testing.T) {
	t.Parallel()
	attempts := 0

	outcome := WaitUntil(context.Background(), Check{
		Label:    "third-time-lucky",
		Interval: 5 * time.Millisecond,
		Deadline: time.Second,
		Probe: func(_ context.Context) (bool, error) {
			attempts++
			return attempts >= 3, nil
		},
	})

	assert.True(t, outcome.Satisfied)
	assert.Equal(t, 3, outcome.Attempts)
}

func TestWaitUntil_ProbeErrorIsNotYetSatisfied(t *testing.T) {
	t.Parallel()
	attempts := 0

	outcome := WaitUntil(context.Background(), Check{
		Label:    "flaky-endpoint",
		Interval: 5 * time.Millisecond,
		Deadline: time.Second,
		Probe: func(_ context.Context) (bool, error) {
			attempts++
			if attempts < 3 {
				return false, errors.New("connection refused")
			}
			return true, nil
		},
	})

	assert.True(t, outcome.Satisfied, "transient probe errors must not abort the wait")
	assert.Equal(t, 3, outcome.Attempts)
}

func TestWaitUntil_TimesOut(t *testing.T) {
	t.Parallel()
	start := time.Now()

	outcome := WaitUntil(context.Background(), Check{
		Label:    "never-true",
		Interval: 10 * time.Millisecond,
		Deadline: 50 * time.Millisecond,
		Probe: func(_ context.Context) (bool, error) {
			return false, nil
		},
	})

	assert.False(t, outcome.Satisfied)
	assert.Greater(t, outcome.Attempts, 1)
	assert.Less(t, time.Since(start), time.Second, "wait must stay bounded by the deadline")
}

func TestWaitUntil_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Outcome, 1)
	go func() {
		done <- WaitUntil(ctx, Check{
			Label:    "cancelled",
			Interval: 10 * time.Millisecond,
			Deadline: time.Minute,
			Probe: func(_ context.Context) (bool, error) {
				return false, nil
			},
		})
	}()

	cancel()

	select {
	case outcome := <-done:
		assert.False(t, outcome.Satisfied)
	case <-time.After(time.Second):
		t.Fatal("WaitUntil did not return after context cancellation")
	}
}

func TestWaitUntil_DefaultsInterval(t *testing.T) {
	t.Parallel()

	outcome := WaitUntil(context.Background(), Check{
		Label:    "no-interval",
		Deadline: time.Millisecond,
		Probe: func(_ context.Context) (bool, error) {
			return true, nil
		},
	})

	require.True(t, outcome.Satisfied)
	assert.Equal(t, 1, outcome.Attempts)
}
