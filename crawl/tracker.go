package crawl

import (
	"context"
	"sync"
)

// Tracker counts outstanding units of work and lets a waiter block until
// the count drops to zero. Register must be called before a unit of work is
// handed off and Arrive exactly once when it finishes.
//
// The zero value is ready to use. A Tracker is reusable: once the count
// reaches zero, the next Register starts a new phase.
type Tracker struct {
	mu          sync.Mutex
	outstanding int
	done        chan struct{} // closed when outstanding reaches zero
}

// Register adds one unit of outstanding work.
func (t *Tracker) Register() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outstanding == 0 {
		t.done = make(chan struct{})
	}
	t.outstanding++
}

// Arrive marks one unit of work as finished, waking waiters if it was the
// last. Arriving more often than registering is a bug and panics.
func (t *Tracker) Arrive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outstanding == 0 {
		panic("crawl: tracker arrive without matching register")
	}
	t.outstanding--
	if t.outstanding == 0 {
		close(t.done)
	}
}

// Outstanding returns the number of registered units not yet arrived.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outstanding
}

// Wait blocks until no work is outstanding or ctx is done.
// It returns ctx.Err() in the latter case.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	if t.outstanding == 0 {
		t.mu.Unlock()
		return nil
	}
	done := t.done
	t.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
