package webcrawl

import "context"

// Page is a downloaded page together with the links found on it.
type Page struct {
	URL   string
	Body  string
	Links []string
}

// Fetcher downloads a page and extracts its outbound links.
// Implementations must be safe for concurrent use and must not block
// indefinitely; timeouts are the Fetcher's responsibility.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Downloader retrieves the raw body of a URL.
type Downloader interface {
	// Download fetches the URL and returns the response body.
	// The context controls timeout and cancellation.
	Download(ctx context.Context, url string) (body string, err error)

	// Close releases transport resources.
	Close() error
}

// LinkExtractor parses HTML and returns the absolute URLs it links to.
type LinkExtractor interface {
	// ExtractLinks resolves every link in html against baseURL.
	ExtractLinks(html string, baseURL string) ([]string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
