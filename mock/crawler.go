package mock

import (
	"context"

	"github.com/fwojciec/webcrawl"
)

var _ webcrawl.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of webcrawl.Crawler.
type Crawler struct {
	DownloadFn func(ctx context.Context, url string, depth int) (*webcrawl.Result, error)
	CloseFn    func() error
}

func (c *Crawler) Download(ctx context.Context, url string, depth int) (*webcrawl.Result, error) {
	return c.DownloadFn(ctx, url, depth)
}

func (c *Crawler) Close() error {
	return c.CloseFn()
}
