package wait

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"element-locator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWaiter() (*Waiter, *Timer) {
	timer := NewTimer()
	return NewWaiter(timer, time.Millisecond, nil), timer
}

func counting(results ...bool) (Predicate, *int) {
	calls := 0
	return func(context.Context) (bool, error) {
		calls++
		if calls <= len(results) {
			return results[calls-1], nil
		}
		return results[len(results)-1], nil
	}, &calls
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "satisfied", Satisfied.String())
	assert.Equal(t, "timed out", TimedOut.String())
}

func TestNewWaiter_DefaultInterval(t *testing.T) {
	w := NewWaiter(NewTimer(), 0, nil)
	assert.Equal(t, entity.DefaultPollInterval, w.interval)
}

func TestUntil_Satisfied(t *testing.T) {
	w, timer := newWaiter()
	pred, calls := counting(false, false, true)

	outcome, err := w.Until(context.Background(), time.Second, pred)
	require.NoError(t, err)
	assert.Equal(t, Satisfied, outcome)
	assert.Equal(t, 3, *calls)
	assert.False(t, timer.Locked())
}

func TestUntil_ZeroTimeoutRunsOnce(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		t.Run(timeout.String(), func(t *testing.T) {
			w, _ := newWaiter()

			pred, calls := counting(false)
			outcome, err := w.Until(context.Background(), timeout, pred)
			require.NoError(t, err)
			assert.Equal(t, TimedOut, outcome)
			assert.Equal(t, 1, *calls)

			pred, calls = counting(true)
			outcome, err = w.Until(context.Background(), timeout, pred)
			require.NoError(t, err)
			assert.Equal(t, Satisfied, outcome)
			assert.Equal(t, 1, *calls)
		})
	}
}

func TestUntil_TimesOut(t *testing.T) {
	w, timer := newWaiter()
	pred, calls := counting(false)

	start := time.Now()
	outcome, err := w.Until(context.Background(), 30*time.Millisecond, pred)
	require.NoError(t, err)
	assert.Equal(t, TimedOut, outcome)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Greater(t, *calls, 1)
	assert.False(t, timer.Locked())
}

func TestUntil_RetryableErrorsMeanNotYet(t *testing.T) {
	retryable := []error{
		entity.ErrStaleElement,
		fmt.Errorf("click: %w", entity.ErrNotInteractable),
		&entity.UnknownObjectError{Selector: "{}"},
	}
	for _, retryErr := range retryable {
		t.Run(retryErr.Error(), func(t *testing.T) {
			w, _ := newWaiter()
			calls := 0
			outcome, err := w.Until(context.Background(), time.Second, func(context.Context) (bool, error) {
				calls++
				if calls == 1 {
					return false, retryErr
				}
				return true, nil
			})
			require.NoError(t, err)
			assert.Equal(t, Satisfied, outcome)
			assert.Equal(t, 2, calls)
		})
	}
}

func TestUntil_OtherErrorsAbort(t *testing.T) {
	w, timer := newWaiter()
	boom := errors.New("connection reset")
	calls := 0

	_, err := w.Until(context.Background(), time.Second, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.False(t, timer.Locked())
}

func TestUntil_ContextCancelled(t *testing.T) {
	timer := NewTimer()
	w := NewWaiter(timer, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pred, calls := counting(false)
	_, err := w.Until(ctx, time.Minute, pred)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, *calls)
	assert.False(t, timer.Locked())
}

func TestUntil_NestedWaitsShareDeadline(t *testing.T) {
	w, timer := newWaiter()
	innerCalls := 0

	start := time.Now()
	outcome, err := w.Until(context.Background(), 50*time.Millisecond, func(ctx context.Context) (bool, error) {
		inner, err := w.Until(ctx, time.Hour, func(context.Context) (bool, error) {
			innerCalls++
			return false, nil
		})
		if err != nil {
			return false, err
		}
		return inner == Satisfied, nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, TimedOut, outcome)
	assert.Less(t, elapsed, time.Second)
	assert.GreaterOrEqual(t, innerCalls, 1)
	assert.False(t, timer.Locked())
}

func TestUntil_ExpiredOuterDeadlineStillRunsInnerOnce(t *testing.T) {
	w, timer := newWaiter()
	release, _ := timer.Acquire(0)
	defer release()

	pred, calls := counting(false)
	outcome, err := w.Until(context.Background(), time.Hour, pred)
	require.NoError(t, err)
	assert.Equal(t, TimedOut, outcome)
	assert.Equal(t, 1, *calls)
	assert.True(t, timer.Locked())
}
