package scrape

import (
	"context"
	"sync"
	"time"

	"jobcrawl-engine/internal/scrape/types"
)

// StatusTracker records the state of the most recent background crawl.
type StatusTracker struct {
	mu   sync.Mutex
	st   types.ScrapeStatus
	done chan struct{} // closed by End; nil before the first Begin
}

func (t *StatusTracker) Snapshot() types.ScrapeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

// Begin marks a crawl as running. It returns false if one already is.
func (t *StatusTracker) Begin(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st.Running {
		return false
	}
	t.st.Running = true
	t.st.LastRunAt = now.UTC().Format(time.RFC3339)
	t.st.LastError = ""
	t.st.LastAdded = 0
	t.done = make(chan struct{})
	return true
}

func (t *StatusTracker) End(now time.Time, added int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.st.Running {
		return
	}
	t.st.Running = false
	t.st.LastAdded = added
	close(t.done)
	if err != nil {
		t.st.LastError = err.Error()
		return
	}
	t.st.LastError = ""
	t.st.LastOkAt = now.UTC().Format(time.RFC3339)
}

// Wait blocks until no crawl is running or ctx ends.
func (t *StatusTracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	running, done := t.st.Running, t.done
	t.mu.Unlock()
	if !running {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
