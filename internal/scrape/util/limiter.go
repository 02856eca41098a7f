package util

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SourceLimiter spaces requests to the same source by a fixed delay.
// Distinct sources never wait on each other.
type SourceLimiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	every time.Duration
}

func NewSourceLimiter(delay time.Duration) *SourceLimiter {
	return &SourceLimiter{
		m:     make(map[string]*rate.Limiter),
		every: delay,
	}
}

func (sl *SourceLimiter) limiterFor(source string) *rate.Limiter {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if lim, ok := sl.m[source]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(sl.every), 1)
	sl.m[source] = lim
	return lim
}

// Wait blocks until the next request to source may go out. A zero delay never blocks.
func (sl *SourceLimiter) Wait(ctx context.Context, source string) error {
	if sl == nil || sl.every <= 0 {
		return ctx.Err()
	}
	return sl.limiterFor(source).Wait(ctx)
}
