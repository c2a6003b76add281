// Package slog provides logging decorators for webcrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Ensure LoggingFetcher implements webcrawl.Fetcher.
var _ webcrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging of every page fetch.
type LoggingFetcher struct {
	next   webcrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next webcrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (page *webcrawl.Page, err error) {
	defer func(begin time.Time) {
		var bytes, links int
		if page != nil {
			bytes, links = len(page.Body), len(page.Links)
		}
		f.logger.Debug("fetch",
			"url", url,
			"bytes", bytes,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
