package monitor

import (
	"context"
	"math/rand/v2"
	"time"
)

// RandSource draws uniform integers in [0, n).
type RandSource interface {
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// NextSleep returns base shifted by a uniform offset in [-jitter, +jitter],
// never less than floor. A nil rnd uses the global generator.
func NextSleep(base, jitter, floor time.Duration, rnd RandSource) time.Duration {
	if rnd == nil {
		rnd = globalRand{}
	}

	d := base
	if jitter > 0 {
		d += time.Duration(rnd.Int64N(int64(2*jitter)+1)) - jitter
	}
	return max(d, floor)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
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
