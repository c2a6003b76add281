package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/prometheus/client_golang/prometheus"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	started := time.Now()
	result, err := deps.Crawler.Download(deps.Ctx, c.URL, c.Depth)
	finished := time.Now()
	if err != nil {
		if deps.Store != nil {
			_ = deps.Store.Abort()
		}
		return err
	}

	for _, url := range result.Downloaded {
		fmt.Fprintf(deps.Stdout, "downloaded %s\n", url)
	}
	failed := make([]string, 0, len(result.Errors))
	for url := range result.Errors {
		failed = append(failed, url)
	}
	sort.Strings(failed)
	for _, url := range failed {
		fmt.Fprintf(deps.Stdout, "error %s: %s\n", url, errorText(result.Errors[url]))
	}
	fmt.Fprintf(deps.Stdout, "Crawled %d pages (%d failed) in %s\n",
		result.Len(), len(result.Errors), finished.Sub(started).Round(time.Millisecond))

	if deps.Store != nil {
		if err := deps.Store.Commit(); err != nil {
			return fmt.Errorf("saving pages: %w", err)
		}
	}

	if deps.Metrics != nil && c.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(c.MetricsFile, deps.Metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if deps.Reports != nil {
		report := webcrawl.NewReport(c.URL, c.Depth, result, started, finished)
		if err := deps.Reports.CreateReport(deps.Ctx, report); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		fmt.Fprintf(deps.Stdout, "Saved report %s\n", report.ID)
	}

	return nil
}

// errorText returns the message of an application error, or the full text
// of any other error.
func errorText(err error) string {
	var e *webcrawl.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
