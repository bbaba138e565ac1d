// Package humanize paces automation so it resembles a person at the keyboard.
package humanize

import (
	"context"
	"math/rand"
	"time"
)

// Jitter returns a uniformly random duration in [min, max]. A nil rng falls
// back to the shared math/rand source.
func Jitter(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := int64(max-min) + 1
	var n int64
	if rng != nil {
		n = rng.Int63n(span)
	} else {
		n = rand.Int63n(span)
	}
	return min + time.Duration(n)
}

// Sleep blocks for d unless ctx ends first, in which case it returns the
// context error immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
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

// Between sleeps a random duration in [min, max], abortable through ctx.
func Between(ctx context.Context, rng *rand.Rand, min, max time.Duration) error {
	return Sleep(ctx, Jitter(rng, min, max))
}
