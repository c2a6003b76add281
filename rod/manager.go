// Package rod renders pages in headless Chrome for sites that build their
// content and links with JavaScript.
package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/webcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// BrowserManager owns a headless Chrome process and replaces it after a
// number of pages. Chrome's memory use grows with every page and never
// returns to its baseline, so long crawls need a fresh process now and then.
//
// A browser is only recycled while no page is open on it.
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu        sync.Mutex
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int
	active    int
	maxPages  int
	closed    bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages after which the browser is
// recycled. Defaults to DefaultMaxPages.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}
	if bm.maxPages < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "max pages must be at least 1, got %d", bm.maxPages)
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}
	return bm, nil
}

// Acquire returns the browser to open one page on. Every successful Acquire
// must be followed by exactly one Release.
func (bm *BrowserManager) Acquire() (*rod.Browser, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, webcrawl.Errorf(webcrawl.ECLOSED, "browser manager is closed")
	}
	if bm.pageCount >= bm.maxPages && bm.active == 0 {
		bm.recycleBrowser()
	}
	bm.active++
	return bm.browser, nil
}

// Release marks a page opened after Acquire as finished.
func (bm *BrowserManager) Release() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.active--
	bm.pageCount++
}

// Close releases browser resources. It is safe to call more than once.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.closeBrowser()
}

// LauncherPID returns the process ID of the browser launcher, or 0 once
// closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

func (bm *BrowserManager) launchBrowser() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = l
	return nil
}

// closeBrowser must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser swaps in a fresh browser, keeping the old one if the
// launch fails. Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser, oldLauncher := bm.browser, bm.launcher
	bm.browser, bm.launcher = nil, nil

	if err := bm.launchBrowser(); err != nil {
		bm.browser, bm.launcher = oldBrowser, oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	bm.pageCount = 0
}
