package wait

import (
	"context"
	"time"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"
)

// Outcome of a wait that did not fail outright.
type Outcome int

const (
	Satisfied Outcome = iota
	TimedOut
)

func (o Outcome) String() string {
	if o == Satisfied {
		return "satisfied"
	}
	return "timed out"
}

// Predicate is polled by Until. Errors accepted by entity.IsRetryable count
// as "not yet"; anything else aborts the wait.
type Predicate func(ctx context.Context) (bool, error)

type Waiter struct {
	timer    *Timer
	interval time.Duration
	logger   output.LoggerPort
}

func NewWaiter(timer *Timer, interval time.Duration, logger output.LoggerPort) *Waiter {
	if interval <= 0 {
		interval = entity.DefaultPollInterval
	}
	return &Waiter{timer: timer, interval: interval, logger: logger}
}

// Until polls pred until it returns true or the shared deadline passes. The
// predicate always runs at least once, even with a zero timeout or an
// already expired outer deadline.
func (w *Waiter) Until(ctx context.Context, timeout time.Duration, pred Predicate) (Outcome, error) {
	release, owner := w.timer.Acquire(timeout)
	defer release()

	attempts := 0
	for {
		attempts++
		ok, err := pred(ctx)
		if err != nil && !entity.IsRetryable(err) {
			return TimedOut, err
		}
		if err == nil && ok {
			return Satisfied, nil
		}

		remaining := w.timer.Remaining()
		if remaining == 0 {
			if w.logger != nil {
				w.logger.Debug("wait timed out",
					"wait_chain", w.timer.Chain(),
					"owner", owner,
					"attempts", attempts,
				)
			}
			return TimedOut, nil
		}

		pause := w.interval
		if remaining < pause {
			pause = remaining
		}
		if err := sleep(ctx, pause); err != nil {
			return TimedOut, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
