package webcrawl

import "context"

// Result is the outcome of a single crawl. Every address the crawl scheduled
// appears in exactly one of Downloaded and Errors.
type Result struct {
	// Downloaded lists successfully fetched URLs in completion order.
	Downloaded []string

	// Errors maps each failed URL to the cause of its failure.
	Errors map[string]error
}

// Len returns the total number of addresses the crawl processed.
func (r *Result) Len() int {
	return len(r.Downloaded) + len(r.Errors)
}

// Failed reports whether url is recorded as a failure.
func (r *Result) Failed(url string) bool {
	_, ok := r.Errors[url]
	return ok
}

// Crawler walks the link graph from a root URL.
type Crawler interface {
	// Download crawls from url, following links up to depth levels
	// (depth 1 fetches only url itself). It blocks until the crawl
	// finishes or ctx is done.
	Download(ctx context.Context, url string, depth int) (*Result, error)

	// Close stops the crawler. Crawls still in progress fail with ECANCELED.
	Close() error
}
