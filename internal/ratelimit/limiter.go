package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"
)

// Limiter blocks the caller for a duration drawn uniformly at random from
// [Min, Max] before each request.
//
// Design decision: We draw a fresh random duration per wait rather than
// using a fixed-interval ticker because uniform jitter avoids the
// mechanical request rhythm that anti-bot systems key on.
type Limiter struct {
	// min and max bound the delay interval; 0 <= min <= max.
	min time.Duration
	max time.Duration
}

// New creates a Limiter with the given delay bounds. Bounds are swapped if
// inverted and clamped at zero, so a Limiter is always usable.
func New(minDelay, maxDelay time.Duration) *Limiter {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Limiter{min: minDelay, max: maxDelay}
}

// Wait blocks until the randomized delay elapses or ctx is cancelled.
// It returns ctx.Err() on cancellation and nil otherwise; there is no
// other failure mode.
func (l *Limiter) Wait(ctx context.Context) error {
	d := l.next()
	if d == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// next draws the delay for one wait.
func (l *Limiter) next() time.Duration {
	if l.max == l.min {
		return l.min
	}
	return l.min + rand.N(l.max-l.min)
}
