package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/crawl"
	"github.com/fwojciec/webcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site is an in-memory link graph served through a mock fetcher. It counts
// fetches per URL and the peak number of fetches in flight, overall and per
// host.
type site struct {
	links map[string][]string
	fail  map[string]error
	delay time.Duration

	mu         sync.Mutex
	fetched    map[string]int
	active     int
	peak       int
	hostActive map[string]int
	hostPeak   map[string]int
}

func newSite(links map[string][]string) *site {
	return &site{
		links:      links,
		fail:       make(map[string]error),
		fetched:    make(map[string]int),
		hostActive: make(map[string]int),
		hostPeak:   make(map[string]int),
	}
}

func (s *site) fetcher(hostKey crawl.HostKeyFunc) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (*webcrawl.Page, error) {
			host, _ := hostKey(url)

			s.mu.Lock()
			s.fetched[url]++
			s.active++
			s.peak = max(s.peak, s.active)
			s.hostActive[host]++
			s.hostPeak[host] = max(s.hostPeak[host], s.hostActive[host])
			s.mu.Unlock()

			defer func() {
				s.mu.Lock()
				s.active--
				s.hostActive[host]--
				s.mu.Unlock()
			}()

			if s.delay > 0 {
				time.Sleep(s.delay)
			}
			if err := s.fail[url]; err != nil {
				return nil, err
			}
			return &webcrawl.Page{URL: url, Links: s.links[url]}, nil
		},
	}
}

func (s *site) fetchCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetched[url]
}

func (s *site) fetchedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make([]string, 0, len(s.fetched))
	for u := range s.fetched {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func newCrawler(t *testing.T, f webcrawl.Fetcher, opts ...crawl.Option) *crawl.Crawler {
	t.Helper()
	c, err := crawl.NewCrawler(f, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sorted(urls []string) []string {
	out := append([]string(nil), urls...)
	sort.Strings(out)
	return out
}

// meshSite links every page to every other page.
func meshSite(n int) (*site, []string) {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://h%d.example.com/p%d", i%4, i)
	}
	links := make(map[string][]string, n)
	for _, u := range urls {
		links[u] = urls
	}
	return newSite(links), urls
}

func TestNewCrawler(t *testing.T) {
	t.Parallel()

	f := &mock.Fetcher{}
	tests := []struct {
		name    string
		fetcher webcrawl.Fetcher
		opts    []crawl.Option
	}{
		{"nil fetcher", nil, nil},
		{"zero fetch concurrency", f, []crawl.Option{crawl.WithFetchConcurrency(0)}},
		{"negative extract concurrency", f, []crawl.Option{crawl.WithExtractConcurrency(-1)}},
		{"negative per-host concurrency", f, []crawl.Option{crawl.WithPerHostConcurrency(-2)}},
		{"nil host key", f, []crawl.Option{crawl.WithHostKey(nil)}},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := crawl.NewCrawler(tt.fetcher, tt.opts...)

			assert.Nil(t, c)
			assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err))
		})
	}

	t.Run("accepts defaults", func(t *testing.T) {
		t.Parallel()

		c, err := crawl.NewCrawler(f)

		require.NoError(t, err)
		assert.NoError(t, c.Close())
	})
}

func TestCrawler_Download(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, &mock.Fetcher{})
		tests := []struct {
			name  string
			url   string
			depth int
		}{
			{"empty url", "", 1},
			{"zero depth", "https://example.com", 0},
			{"negative depth", "https://example.com", -1},
			{"url without host", "/relative", 1},
		}
		for _, tt := range tests {
			result, err := c.Download(context.Background(), tt.url, tt.depth)

			assert.Nil(t, result, tt.name)
			assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err), tt.name)
		}
	})

	t.Run("depth one fetches only the root", func(t *testing.T) {
		t.Parallel()

		s := newSite(map[string][]string{
			"https://example.com/": {"https://example.com/a", "https://example.com/b"},
		})
		c := newCrawler(t, s.fetcher(crawl.HostOf), crawl.WithFetchConcurrency(4))

		result, err := c.Download(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/"}, result.Downloaded)
		assert.Empty(t, result.Errors)
		assert.Equal(t, []string{"https://example.com/"}, s.fetchedURLs())
	})

	t.Run("depth two fetches the root and its links only", func(t *testing.T) {
		t.Parallel()

		s := newSite(map[string][]string{
			"https://example.com/":  {"https://example.com/a", "https://other.com/b"},
			"https://example.com/a": {"https://example.com/deep"},
			"https://other.com/b":   {"https://other.com/deeper"},
		})
		c := newCrawler(t, s.fetcher(crawl.HostOf), crawl.WithFetchConcurrency(4), crawl.WithExtractConcurrency(2))

		result, err := c.Download(context.Background(), "https://example.com/", 2)

		require.NoError(t, err)
		want := []string{"https://example.com/", "https://example.com/a", "https://other.com/b"}
		assert.Equal(t, want, sorted(result.Downloaded))
		assert.Equal(t, want, s.fetchedURLs())
	})

	t.Run("follows links across levels", func(t *testing.T) {
		t.Parallel()

		s := newSite(map[string][]string{
			"https://example.com/1": {"https://example.com/2"},
			"https://example.com/2": {"https://example.com/3"},
			"https://example.com/3": {"https://example.com/4"},
			"https://example.com/4": {"https://example.com/5"},
		})
		c := newCrawler(t, s.fetcher(crawl.HostOf))

		result, err := c.Download(context.Background(), "https://example.com/1", 4)

		require.NoError(t, err)
		// A chain is fetched strictly in order.
		assert.Equal(t, []string{
			"https://example.com/1",
			"https://example.com/2",
			"https://example.com/3",
			"https://example.com/4",
		}, result.Downloaded)
	})

	t.Run("fetches each url once under concurrent discovery", func(t *testing.T) {
		t.Parallel()

		s, urls := meshSite(24)
		c := newCrawler(t, s.fetcher(crawl.HostOf),
			crawl.WithFetchConcurrency(8),
			crawl.WithExtractConcurrency(4),
			crawl.WithPerHostConcurrency(3),
		)

		result, err := c.Download(context.Background(), urls[0], 3)

		require.NoError(t, err)
		assert.Equal(t, sorted(urls), sorted(result.Downloaded))
		for _, u := range urls {
			assert.Equal(t, 1, s.fetchCount(u), u)
		}
	})

	t.Run("records failures separately from downloads", func(t *testing.T) {
		t.Parallel()

		s := newSite(map[string][]string{
			"https://example.com/": {"https://example.com/ok", "https://example.com/broken"},
			// Links of a failed page are never followed.
			"https://example.com/broken": {"https://example.com/hidden"},
		})
		notFound := errors.New("404 not found")
		s.fail["https://example.com/broken"] = notFound
		c := newCrawler(t, s.fetcher(crawl.HostOf), crawl.WithFetchConcurrency(2))

		result, err := c.Download(context.Background(), "https://example.com/", 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/", "https://example.com/ok"}, sorted(result.Downloaded))
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors["https://example.com/broken"], notFound)
		assert.True(t, result.Failed("https://example.com/broken"))
		assert.Equal(t, 3, result.Len())
		for _, u := range result.Downloaded {
			assert.False(t, result.Failed(u), "url in both sets: %s", u)
		}
	})

	t.Run("failed root yields an error entry", func(t *testing.T) {
		t.Parallel()

		s := newSite(nil)
		s.fail["https://down.example.com/"] = errors.New("connection refused")
		c := newCrawler(t, s.fetcher(crawl.HostOf))

		result, err := c.Download(context.Background(), "https://down.example.com/", 2)

		require.NoError(t, err)
		assert.Empty(t, result.Downloaded)
		assert.Contains(t, result.Errors, "https://down.example.com/")
	})

	t.Run("records links without a host as invalid", func(t *testing.T) {
		t.Parallel()

		s := newSite(map[string][]string{
			"https://example.com/": {"relative/path", "https://example.com/a"},
		})
		c := newCrawler(t, s.fetcher(crawl.HostOf))

		result, err := c.Download(context.Background(), "https://example.com/", 2)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/", "https://example.com/a"}, sorted(result.Downloaded))
		require.Contains(t, result.Errors, "relative/path")
		assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(result.Errors["relative/path"]))
		assert.Equal(t, 0, s.fetchCount("relative/path"))
	})

	t.Run("converts fetcher panic into internal error", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*webcrawl.Page, error) {
				if url == "https://example.com/boom" {
					panic("parser exploded")
				}
				return &webcrawl.Page{URL: url, Links: []string{"https://example.com/boom", "https://example.com/fine"}}, nil
			},
		}
		c := newCrawler(t, f, crawl.WithFetchConcurrency(2))

		result, err := c.Download(context.Background(), "https://example.com/", 2)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/", "https://example.com/fine"}, sorted(result.Downloaded))
		assert.Equal(t, webcrawl.EINTERNAL, webcrawl.ErrorCode(result.Errors["https://example.com/boom"]))
	})

	t.Run("treats nil page as internal error", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (*webcrawl.Page, error) {
				return nil, nil
			},
		}
		c := newCrawler(t, f)

		result, err := c.Download(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		assert.Equal(t, webcrawl.EINTERNAL, webcrawl.ErrorCode(result.Errors["https://example.com/"]))
	})

	t.Run("never exceeds fetch concurrency", func(t *testing.T) {
		t.Parallel()

		links := make([]string, 30)
		for i := range links {
			links[i] = fmt.Sprintf("https://site%d.com/", i)
		}
		s := newSite(map[string][]string{"https://root.com/": links})
		s.delay = 5 * time.Millisecond
		c := newCrawler(t, s.fetcher(crawl.HostOf), crawl.WithFetchConcurrency(3), crawl.WithExtractConcurrency(2))

		result, err := c.Download(context.Background(), "https://root.com/", 2)

		require.NoError(t, err)
		assert.Len(t, result.Downloaded, 31)
		assert.LessOrEqual(t, s.peak, 3)
	})

	t.Run("never exceeds per-host concurrency", func(t *testing.T) {
		t.Parallel()

		var links []string
		for i := range 5 {
			links = append(links, fmt.Sprintf("https://busy.com/%d", i))
			links = append(links, fmt.Sprintf("https://quiet%d.com/", i))
		}
		s := newSite(map[string][]string{"https://busy.com/": links})
		s.delay = 5 * time.Millisecond
		c := newCrawler(t, s.fetcher(crawl.HostOf),
			crawl.WithFetchConcurrency(8),
			crawl.WithPerHostConcurrency(1),
		)

		result, err := c.Download(context.Background(), "https://busy.com/", 2)

		require.NoError(t, err)
		assert.Len(t, result.Downloaded, 11)
		assert.Equal(t, 1, s.hostPeak["busy.com"], "busy host should be fetched one at a time")
		assert.LessOrEqual(t, s.peak, 8)
	})

	t.Run("groups subdomains with domain host key", func(t *testing.T) {
		t.Parallel()

		s := newSite(map[string][]string{
			"https://www.example.com/": {
				"https://a.example.com/",
				"https://b.example.com/",
				"https://c.example.com/",
			},
		})
		s.delay = 5 * time.Millisecond
		c := newCrawler(t, s.fetcher(crawl.DomainOf),
			crawl.WithFetchConcurrency(4),
			crawl.WithPerHostConcurrency(1),
			crawl.WithHostKey(crawl.DomainOf),
		)

		result, err := c.Download(context.Background(), "https://www.example.com/", 2)

		require.NoError(t, err)
		assert.Len(t, result.Downloaded, 4)
		assert.Equal(t, 1, s.hostPeak["example.com"])
	})

	t.Run("runs concurrent crawls on one crawler", func(t *testing.T) {
		t.Parallel()

		s, urls := meshSite(12)
		c := newCrawler(t, s.fetcher(crawl.HostOf), crawl.WithFetchConcurrency(4), crawl.WithExtractConcurrency(2))

		var wg sync.WaitGroup
		results := make([]*webcrawl.Result, 3)
		errs := make([]error, 3)
		for i := range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = c.Download(context.Background(), urls[i], 2)
			}()
		}
		wg.Wait()

		for i := range 3 {
			require.NoError(t, errs[i])
			assert.Equal(t, sorted(urls), sorted(results[i].Downloaded))
		}
		// Each crawl keeps its own visited set.
		for _, u := range urls {
			assert.Equal(t, 3, s.fetchCount(u), u)
		}
	})

	t.Run("returns canceled when context ends", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		var once sync.Once
		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*webcrawl.Page, error) {
				once.Do(func() { close(started) })
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		c := newCrawler(t, f)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-started
			cancel()
		}()

		result, err := c.Download(ctx, "https://example.com/", 3)

		assert.Nil(t, result)
		assert.Equal(t, webcrawl.ECANCELED, webcrawl.ErrorCode(err))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returns canceled when crawler closes mid-crawl", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		var once sync.Once
		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*webcrawl.Page, error) {
				once.Do(func() { close(started) })
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		c, err := crawl.NewCrawler(f)
		require.NoError(t, err)

		go func() {
			<-started
			_ = c.Close()
		}()

		result, err := c.Download(context.Background(), "https://example.com/", 2)

		assert.Nil(t, result)
		assert.Equal(t, webcrawl.ECANCELED, webcrawl.ErrorCode(err))
	})

	t.Run("rejects crawl after close", func(t *testing.T) {
		t.Parallel()

		c, err := crawl.NewCrawler(&mock.Fetcher{})
		require.NoError(t, err)
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		result, err := c.Download(context.Background(), "https://example.com/", 1)

		assert.Nil(t, result)
		assert.Equal(t, webcrawl.ECLOSED, webcrawl.ErrorCode(err))
	})

	t.Run("discards queued fetches after cancel", func(t *testing.T) {
		t.Parallel()

		links := make([]string, 20)
		for i := range links {
			links[i] = fmt.Sprintf("https://example.com/%d", i)
		}
		var fetches atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		f := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*webcrawl.Page, error) {
				if fetches.Add(1) == 2 {
					cancel()
				}
				return &webcrawl.Page{URL: url, Links: links}, nil
			},
		}
		c := newCrawler(t, f)

		_, err := c.Download(ctx, "https://root.com/", 2)

		assert.Equal(t, webcrawl.ECANCELED, webcrawl.ErrorCode(err))
		assert.Less(t, fetches.Load(), int32(21))
	})
}
