package crawl

import (
	"sync"

	"github.com/fwojciec/webcrawl"
)

// HostLimiter caps the number of tasks running concurrently against one
// host. Tasks beyond the cap are queued per host and started, in order, as
// earlier tasks for the same host are released.
//
// Each host has its own lock, so admitting work for one host never waits on
// another. Host records are created on first use and kept for the lifetime
// of the limiter.
type HostLimiter struct {
	limit int
	pool  *Pool
	hosts sync.Map // host key -> *hostTraffic
}

// hostTraffic is the in-flight count and overflow queue of one host.
type hostTraffic struct {
	mu      sync.Mutex
	active  int
	pending fifo[func()]
}

// NewHostLimiter creates a HostLimiter that runs admitted tasks on pool.
func NewHostLimiter(limit int, pool *Pool) (*HostLimiter, error) {
	if limit < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "per-host limit must be at least 1, got %d", limit)
	}
	if pool == nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "pool required")
	}
	return &HostLimiter{limit: limit, pool: pool}, nil
}

// Admit runs task on the pool if host is below its limit and queues it
// otherwise. It never blocks. Every admitted task must be followed by
// exactly one Release for the same host once the task finishes.
func (l *HostLimiter) Admit(host string, task func()) {
	t := l.traffic(host)

	t.mu.Lock()
	if t.active >= l.limit {
		t.pending.push(task)
		t.mu.Unlock()
		return
	}
	t.active++
	t.mu.Unlock()

	l.pool.Submit(task)
}

// Release hands the slot of a finished task to the next queued task for
// host, or frees it if none is waiting.
func (l *HostLimiter) Release(host string) {
	t := l.traffic(host)

	t.mu.Lock()
	if next, ok := t.pending.pop(); ok {
		t.mu.Unlock()
		l.pool.Submit(next)
		return
	}
	if t.active == 0 {
		t.mu.Unlock()
		panic("crawl: host limiter release without matching admit for " + host)
	}
	t.active--
	t.mu.Unlock()
}

// InFlight returns the number of admitted, unreleased tasks for host.
func (l *HostLimiter) InFlight(host string) int {
	t := l.traffic(host)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Pending returns the number of tasks queued for host.
func (l *HostLimiter) Pending(host string) int {
	t := l.traffic(host)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending.len()
}

func (l *HostLimiter) traffic(host string) *hostTraffic {
	if t, ok := l.hosts.Load(host); ok {
		return t.(*hostTraffic)
	}
	t, _ := l.hosts.LoadOrStore(host, &hostTraffic{})
	return t.(*hostTraffic)
}
