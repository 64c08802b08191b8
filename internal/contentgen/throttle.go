package contentgen

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// Throttle caps how often the wrapped Source is called.
type Throttle struct {
	inner   Source
	limiter *rate.Limiter
}

// NewThrottle allows perMinute fetches per minute with a burst of one.
// A non-positive perMinute returns src unchanged.
func NewThrottle(src Source, perMinute int) Source {
	if perMinute <= 0 {
		return src
	}
	every := time.Minute / time.Duration(perMinute)
	return &Throttle{inner: src, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// Fetch waits for a token, bounded by ctx, then delegates.
func (t *Throttle) Fetch(ctx context.Context, req Request) ([]*problemgen.Problem, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("content throttle: %w", err)
	}
	return t.inner.Fetch(ctx, req)
}
