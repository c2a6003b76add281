package mock

import (
	"context"

	"github.com/fwojciec/webcrawl"
)

// Compile-time interface verification.
var (
	_ webcrawl.Fetcher       = (*Fetcher)(nil)
	_ webcrawl.Downloader    = (*Downloader)(nil)
	_ webcrawl.LinkExtractor = (*LinkExtractor)(nil)
	_ webcrawl.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of webcrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*webcrawl.Page, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*webcrawl.Page, error) {
	return f.FetchFn(ctx, url)
}

// Downloader is a mock implementation of webcrawl.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string) (string, error)
	CloseFn    func() error
}

func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	return d.DownloadFn(ctx, url)
}

func (d *Downloader) Close() error {
	return d.CloseFn()
}

// LinkExtractor is a mock implementation of webcrawl.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}

// DomainLimiter is a mock implementation of webcrawl.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
