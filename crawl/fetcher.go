package crawl

import (
	"context"
	"fmt"

	"github.com/fwojciec/webcrawl"
)

// Compile-time interface verification.
var _ webcrawl.Fetcher = (*PageFetcher)(nil)

// PageFetcher downloads a page and extracts its links.
// If RateLimiter is set, each download first waits for its host's turn.
type PageFetcher struct {
	Downloader  webcrawl.Downloader
	Extractor   webcrawl.LinkExtractor
	RateLimiter webcrawl.DomainLimiter
}

// Fetch downloads url and returns its body and links. A page whose links
// cannot be extracted counts as a failed fetch.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (*webcrawl.Page, error) {
	if f.RateLimiter != nil {
		host, err := HostOf(url)
		if err != nil {
			return nil, err
		}
		if err := f.RateLimiter.Wait(ctx, host); err != nil {
			return nil, err
		}
	}

	body, err := f.Downloader.Download(ctx, url)
	if err != nil {
		return nil, err
	}

	links, err := f.Extractor.ExtractLinks(body, url)
	if err != nil {
		return nil, fmt.Errorf("extract links: %w", err)
	}

	return &webcrawl.Page{
		URL:   url,
		Body:  body,
		Links: links,
	}, nil
}
