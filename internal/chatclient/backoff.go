package chatclient

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// BackoffFunc returns the wait before retry number retry (0 for the wait
// after the first failed attempt).
type BackoffFunc func(retry int) time.Duration

// MaxBackoffDelay caps every computed delay.
const MaxBackoffDelay = 30 * time.Second

// ExponentialBackoff doubles base on every retry and adds up to base of
// jitter, clamped to MaxBackoffDelay. The jitter never exceeds base, so
// successive delays never shrink.
func ExponentialBackoff(base time.Duration) BackoffFunc {
	return func(retry int) time.Duration {
		if base <= 0 {
			return 0
		}
		if retry < 0 {
			retry = 0
		}
		// base<<retry would pass the cap (or overflow)
		if retry >= 62 || base > MaxBackoffDelay>>uint(retry) {
			return MaxBackoffDelay
		}
		d := base<<uint(retry) + time.Duration(rand.Int64N(int64(base)))
		return min(d, MaxBackoffDelay)
	}
}

// BackoffSchedule resolves a schedule name to a BackoffFunc.
func BackoffSchedule(name string, base time.Duration) (BackoffFunc, error) {
	switch name {
	case "", "exponential":
		return ExponentialBackoff(base), nil
	case "linear":
		return LinearBackoff(base), nil
	default:
		return nil, fmt.Errorf("unknown backoff schedule %q (expected exponential or linear)", name)
	}
}

// LinearBackoff waits step, 2*step, 3*step, ... up to MaxBackoffDelay.
func LinearBackoff(step time.Duration) BackoffFunc {
	return func(retry int) time.Duration {
		if step <= 0 {
			return 0
		}
		n := time.Duration(retry + 1)
		if n <= 0 || step > MaxBackoffDelay/n {
			return MaxBackoffDelay
		}
		return step * n
	}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
