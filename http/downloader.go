// Package http provides an HTTP implementation of webcrawl.Downloader.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/webcrawl"
)

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodySize is the default limit on how much of a response body
// is read.
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgent identifies the crawler to servers.
const DefaultUserAgent = "webcrawl/1.0"

// Ensure Downloader implements webcrawl.Downloader at compile time.
var _ webcrawl.Downloader = (*Downloader)(nil)

// Downloader retrieves page bodies with plain HTTP GET requests.
// It does not execute JavaScript.
type Downloader struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithMaxBodySize caps the number of body bytes read per response.
// Anything beyond the cap is ignored.
func WithMaxBodySize(n int64) Option {
	return func(dl *Downloader) {
		dl.maxBodySize = n
	}
}

// NewDownloader creates a new HTTP Downloader.
func NewDownloader(opts ...Option) *Downloader {
	dl := &Downloader{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(dl)
	}

	dl.client = &http.Client{
		Timeout: dl.timeout,
	}

	return dl
}

// Download retrieves the body of the given URL. Any status other than
// 200 OK is an error.
func (dl *Downloader) Download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", dl.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := dl.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dl.maxBodySize))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close releases resources. This is a no-op since http.Client doesn't
// require explicit cleanup.
func (dl *Downloader) Close() error {
	return nil
}
