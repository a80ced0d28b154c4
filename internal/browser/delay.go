package browser

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay pauses for a random duration in [min, max], or returns early
// if the context is cancelled. Irregular pacing between actions keeps the
// request pattern from looking machine-generated.
func RandomDelay(ctx context.Context, min, max time.Duration) {
	if max <= min {
		max = min
	}
	d := min
	if span := max - min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
