package humanize

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJitterStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	min := 20 * time.Millisecond
	max := 80 * time.Millisecond

	for i := 0; i < 1000; i++ {
		d := Jitter(rng, min, max)
		require.GreaterOrEqual(t, d, min)
		require.LessOrEqual(t, d, max)
	}
}

func TestJitterDegenerateRange(t *testing.T) {
	assert.Equal(t, time.Second, Jitter(nil, time.Second, time.Second))
	assert.Equal(t, time.Second, Jitter(nil, time.Second, time.Millisecond))
}

func TestSleepHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Sleep(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepZeroDuration(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}

func TestBetween(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := time.Now()
	err := Between(context.Background(), rng, time.Millisecond, 5*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), time.Millisecond)
}
