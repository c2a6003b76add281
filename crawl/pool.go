package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/webcrawl"
	"golang.org/x/sync/errgroup"
)

// Pool runs submitted tasks on a fixed number of worker goroutines.
// Submit never blocks: tasks beyond the worker count wait in an unbounded
// FIFO queue. It is safe for concurrent use by multiple goroutines.
type Pool struct {
	mu     sync.Mutex
	queue  fifo[func()]
	closed bool

	// ready holds at most one wakeup for idle workers.
	ready chan struct{}

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewPool starts a pool with n workers.
func NewPool(n int) (*Pool, error) {
	if n < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "pool size must be at least 1, got %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p := &Pool{
		ready:  make(chan struct{}, 1),
		cancel: cancel,
		group:  g,
	}
	for range n {
		g.Go(func() error {
			p.work(gctx)
			return nil
		})
	}
	return p, nil
}

// Submit queues task for execution.
// Returns false if the pool is closed, in which case task is discarded.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.queue.push(task)
	p.mu.Unlock()

	p.wake()
	return true
}

// Len returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// Close stops the pool. Queued tasks are discarded; Close waits for tasks
// already running to return.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.queue.clear()
	p.mu.Unlock()

	p.cancel()
	return p.group.Wait()
}

func (p *Pool) work(ctx context.Context) {
	for {
		task, more, ok := p.next()
		if ok {
			// Pass the wakeup on so another idle worker drains the rest.
			if more {
				p.wake()
			}
			task()
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-p.ready:
		}
	}
}

// next pops the oldest task and reports whether more remain queued.
func (p *Pool) next() (task func(), more bool, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, false, false
	}
	task, ok = p.queue.pop()
	return task, p.queue.len() > 0, ok
}

func (p *Pool) wake() {
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// fifo is a slice-backed first-in first-out queue. Not safe for concurrent
// use; callers hold their own lock.
type fifo[T any] struct {
	items []T
	head  int
}

func (q *fifo[T]) push(v T) {
	q.items = append(q.items, v)
}

func (q *fifo[T]) pop() (T, bool) {
	var zero T
	if q.head == len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v, true
}

func (q *fifo[T]) len() int {
	return len(q.items) - q.head
}

func (q *fifo[T]) clear() {
	clear(q.items)
	q.items = nil
	q.head = 0
}
