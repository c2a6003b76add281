package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultTimeout bounds navigation and rendering of one page.
const DefaultTimeout = 30 * time.Second

// Ensure Downloader implements webcrawl.Downloader at compile time.
var _ webcrawl.Downloader = (*Downloader)(nil)

// Downloader retrieves the HTML of a page after its scripts have run.
// It is safe for concurrent use; each Download opens its own tab.
type Downloader struct {
	manager *BrowserManager
	timeout time.Duration
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets how long one page may take to load and render.
// Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// NewDownloader creates a Downloader that renders pages with manager's
// browser. Close closes the manager.
func NewDownloader(manager *BrowserManager, opts ...Option) (*Downloader, error) {
	if manager == nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "browser manager required")
	}
	d := &Downloader{
		manager: manager,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.timeout <= 0 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "timeout must be positive, got %s", d.timeout)
	}
	return d, nil
}

// Download navigates to url and returns the rendered HTML.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	browser, err := d.manager.Acquire()
	if err != nil {
		return "", err
	}
	defer d.manager.Release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening tab: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("loading %s: %w", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down.
func (d *Downloader) Close() error {
	return d.manager.Close()
}
