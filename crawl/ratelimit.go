package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/webcrawl"
	"golang.org/x/time/rate"
)

var _ webcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out requests to each domain with a token bucket per
// domain. Domains never wait on each other.
type DomainLimiter struct {
	limit    rate.Limit
	burst    int
	limiters sync.Map // domain -> *rate.Limiter
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst lets up to n requests to a domain through back to back.
// Defaults to 1.
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		if n > 0 {
			d.burst = n
		}
	}
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each domain. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		limit: rate.Limit(rps),
		burst: 1,
	}
	if rps <= 0 {
		d.limit = rate.Inf
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until the domain's bucket has a token.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.limiter(domain).Wait(ctx)
}

func (d *DomainLimiter) limiter(domain string) *rate.Limiter {
	if l, ok := d.limiters.Load(domain); ok {
		return l.(*rate.Limiter)
	}
	l, _ := d.limiters.LoadOrStore(domain, rate.NewLimiter(d.limit, d.burst))
	return l.(*rate.Limiter)
}
