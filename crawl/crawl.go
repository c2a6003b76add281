// Package crawl provides bounded-concurrency crawling orchestration.
// It schedules page fetches and link fan-out on two worker pools, deduplicates
// URLs, caps concurrent fetches per host, and detects when a crawl is done.
package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/webcrawl"
)

// Compile-time interface verification.
var _ webcrawl.Crawler = (*Crawler)(nil)

// Crawler crawls the link graph reachable from a root URL.
// A Crawler owns a fetch pool and an extract pool shared by all of its
// crawls; it is safe to run several crawls concurrently.
type Crawler struct {
	fetcher  webcrawl.Fetcher
	hostKey  HostKeyFunc
	perHost  int
	fetches  *Pool
	extracts *Pool

	// ctx is canceled by Close and bounds every crawl.
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Option configures a Crawler.
type Option func(*config)

type config struct {
	fetchConcurrency   int
	extractConcurrency int
	perHostConcurrency int
	hostKey            HostKeyFunc
}

// WithFetchConcurrency sets the number of fetches that may run at once.
// Defaults to 1.
func WithFetchConcurrency(n int) Option {
	return func(c *config) {
		c.fetchConcurrency = n
	}
}

// WithExtractConcurrency sets the number of link fan-out jobs that may run
// at once. Defaults to 1.
func WithExtractConcurrency(n int) Option {
	return func(c *config) {
		c.extractConcurrency = n
	}
}

// WithPerHostConcurrency sets the number of fetches that may run at once
// against one host. Defaults to the fetch concurrency.
func WithPerHostConcurrency(n int) Option {
	return func(c *config) {
		c.perHostConcurrency = n
	}
}

// WithHostKey sets how URLs are grouped for per-host limits.
// Defaults to HostOf.
func WithHostKey(fn HostKeyFunc) Option {
	return func(c *config) {
		c.hostKey = fn
	}
}

// NewCrawler creates a Crawler that downloads pages with fetcher.
// Invalid configuration is rejected with EINVALID.
func NewCrawler(fetcher webcrawl.Fetcher, opts ...Option) (*Crawler, error) {
	cfg := &config{
		fetchConcurrency:   1,
		extractConcurrency: 1,
		hostKey:            HostOf,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.perHostConcurrency == 0 {
		cfg.perHostConcurrency = cfg.fetchConcurrency
	}

	if fetcher == nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "fetcher required")
	}
	if cfg.hostKey == nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "host key function required")
	}
	if cfg.fetchConcurrency < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "fetch concurrency must be at least 1, got %d", cfg.fetchConcurrency)
	}
	if cfg.extractConcurrency < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "extract concurrency must be at least 1, got %d", cfg.extractConcurrency)
	}
	if cfg.perHostConcurrency < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "per-host concurrency must be at least 1, got %d", cfg.perHostConcurrency)
	}

	fetches, err := NewPool(cfg.fetchConcurrency)
	if err != nil {
		return nil, err
	}
	extracts, err := NewPool(cfg.extractConcurrency)
	if err != nil {
		_ = fetches.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Crawler{
		fetcher:  fetcher,
		hostKey:  cfg.hostKey,
		perHost:  cfg.perHostConcurrency,
		fetches:  fetches,
		extracts: extracts,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Download crawls from rawURL to the given depth and returns which pages
// were downloaded and which failed. Depth 1 fetches only rawURL.
//
// Invalid arguments fail with EINVALID before any fetch starts. If ctx ends
// or the Crawler is closed before the crawl finishes, Download returns an
// ECANCELED error and no result.
func (c *Crawler) Download(ctx context.Context, rawURL string, depth int) (*webcrawl.Result, error) {
	if rawURL == "" {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "URL required")
	}
	if depth < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "depth must be at least 1, got %d", depth)
	}
	host, err := c.hostKey(rawURL)
	if err != nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "cannot derive host of %q: %s", rawURL, webcrawl.ErrorMessage(err))
	}
	if c.ctx.Err() != nil {
		return nil, webcrawl.Errorf(webcrawl.ECLOSED, "crawler is closed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	hosts, err := NewHostLimiter(c.perHost, c.fetches)
	if err != nil {
		return nil, err
	}
	r := &run{
		ctx:      ctx,
		crawler:  c,
		maxDepth: depth,
		visited:  NewVisitedSet(),
		hosts:    hosts,
		errors:   make(map[string]error),
	}

	// Hold one unit for ourselves so the count cannot reach zero before the
	// root fetch is registered.
	r.tracker.Register()
	r.visited.Add(rawURL)
	r.schedule(rawURL, host, 1)
	r.tracker.Arrive()

	// Tasks abandoned after cancellation still arrive, so a zero count alone
	// does not mean the crawl completed.
	err = r.tracker.Wait(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if c.ctx.Err() != nil {
			return nil, &webcrawl.Error{Code: webcrawl.ECANCELED, Message: "crawler closed during crawl", Err: err}
		}
		return nil, &webcrawl.Error{Code: webcrawl.ECANCELED, Message: "crawl canceled", Err: err}
	}
	return r.result(), nil
}

// Close stops accepting crawls, cancels crawls in progress and shuts down
// both pools. Queued tasks are discarded. It is safe to call more than once.
func (c *Crawler) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if e := c.extracts.Close(); e != nil {
			err = e
		}
		if e := c.fetches.Close(); e != nil && err == nil {
			err = e
		}
	})
	return err
}

// run holds the state of one Download call.
type run struct {
	ctx      context.Context
	crawler  *Crawler
	maxDepth int
	visited  *VisitedSet
	hosts    *HostLimiter
	tracker  Tracker

	mu         sync.Mutex
	downloaded []string
	errors     map[string]error
}

// schedule registers a fetch of url and hands it to the host limiter.
func (r *run) schedule(url, host string, depth int) {
	r.tracker.Register()
	r.hosts.Admit(host, func() {
		r.fetch(url, host, depth)
	})
}

// fetch downloads one page and, below the depth limit, queues its links for
// fan-out. It always arrives and releases its host slot.
func (r *run) fetch(url, host string, depth int) {
	defer r.hosts.Release(host)
	defer r.tracker.Arrive()
	defer func() {
		if p := recover(); p != nil {
			r.fail(url, webcrawl.Errorf(webcrawl.EINTERNAL, "fetch panicked: %v", p))
		}
	}()

	// The crawl was abandoned while this task waited in a queue.
	if r.ctx.Err() != nil {
		return
	}

	page, err := r.crawler.fetcher.Fetch(r.ctx, url)
	if err != nil {
		r.fail(url, err)
		return
	}
	if page == nil {
		r.fail(url, webcrawl.Errorf(webcrawl.EINTERNAL, "fetcher returned no page"))
		return
	}
	r.succeed(url)

	if depth >= r.maxDepth || len(page.Links) == 0 {
		return
	}
	links := page.Links
	r.tracker.Register()
	if !r.crawler.extracts.Submit(func() { r.extract(links, depth) }) {
		r.tracker.Arrive()
	}
}

// extract schedules a fetch at depth+1 for every link not seen before.
func (r *run) extract(links []string, depth int) {
	defer r.tracker.Arrive()

	for _, link := range links {
		if r.ctx.Err() != nil {
			return
		}
		if !r.visited.Add(link) {
			continue
		}
		host, err := r.crawler.hostKey(link)
		if err != nil {
			r.fail(link, webcrawl.Errorf(webcrawl.EINVALID, "cannot derive host of %q: %s", link, webcrawl.ErrorMessage(err)))
			continue
		}
		r.schedule(link, host, depth+1)
	}
}

func (r *run) succeed(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloaded = append(r.downloaded, url)
}

func (r *run) fail(url string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[url] = err
}

func (r *run) result() *webcrawl.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	errs := make(map[string]error, len(r.errors))
	for url, err := range r.errors {
		errs[url] = err
	}
	return &webcrawl.Result{
		Downloaded: append([]string(nil), r.downloaded...),
		Errors:     errs,
	}
}
