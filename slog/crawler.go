package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Ensure LoggingCrawler implements webcrawl.Crawler.
var _ webcrawl.Crawler = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a Crawler with a summary log line per crawl.
type LoggingCrawler struct {
	next   webcrawl.Crawler
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next webcrawl.Crawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Download delegates to the wrapped crawler and logs the outcome.
func (c *LoggingCrawler) Download(ctx context.Context, url string, depth int) (result *webcrawl.Result, err error) {
	defer func(begin time.Time) {
		var downloaded, failed int
		if result != nil {
			downloaded, failed = len(result.Downloaded), len(result.Errors)
		}
		c.logger.Info("crawl",
			"url", url,
			"depth", depth,
			"downloaded", downloaded,
			"failed", failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Download(ctx, url, depth)
}

// Close delegates to the wrapped crawler.
func (c *LoggingCrawler) Close() error {
	return c.next.Close()
}
