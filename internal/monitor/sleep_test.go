package monitor

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedRand int64

func (f fixedRand) Int64N(n int64) int64 { return min(int64(f), n-1) }

func TestNextSleep_Bounds(t *testing.T) {
	base, jitter, floor := 60*time.Second, 30*time.Second, 30*time.Second
	rnd := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 10_000; i++ {
		d := NextSleep(base, jitter, floor, rnd)
		assert.GreaterOrEqual(t, d, floor)
		assert.LessOrEqual(t, d, base+jitter)
	}
}

func TestNextSleep_Extremes(t *testing.T) {
	base, jitter, floor := 30*time.Second, 20*time.Second, 30*time.Second

	// Lowest draw is clamped to the floor.
	assert.Equal(t, floor, NextSleep(base, jitter, floor, fixedRand(0)))
	// Highest draw is base + jitter.
	assert.Equal(t, base+jitter, NextSleep(base, jitter, floor, fixedRand(1<<62)))
	// Middle draw is base.
	assert.Equal(t, base, NextSleep(base, jitter, floor, fixedRand(int64(jitter))))
}

func TestNextSleep_NoJitter(t *testing.T) {
	assert.Equal(t, 90*time.Second, NextSleep(90*time.Second, 0, 30*time.Second, nil))
	assert.Equal(t, 30*time.Second, NextSleep(10*time.Second, 0, 30*time.Second, nil))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
