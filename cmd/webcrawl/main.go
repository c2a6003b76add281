package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/crawl"
	"github.com/fwojciec/webcrawl/fs"
	"github.com/fwojciec/webcrawl/goquery"
	"github.com/fwojciec/webcrawl/htmltomarkdown"
	wchttp "github.com/fwojciec/webcrawl/http"
	wcprom "github.com/fwojciec/webcrawl/prometheus"
	"github.com/fwojciec/webcrawl/readability"
	"github.com/fwojciec/webcrawl/rod"
	wcslog "github.com/fwojciec/webcrawl/slog"
	"github.com/fwojciec/webcrawl/sqlite"
	"github.com/fwojciec/webcrawl/trafilatura"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	// Run reports its own errors on stderr.
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); --db overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Crawler built for the crawl command.
	Crawler webcrawl.Crawler

	// Downloader used by Crawler; closed after it.
	Downloader webcrawl.Downloader
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var err error
	if m.Crawler != nil {
		err = m.Crawler.Close()
	}
	if m.Downloader != nil {
		if e := m.Downloader.Close(); e != nil && err == nil {
			err = e
		}
	}
	if m.DB != nil {
		if e := m.DB.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Run executes the CLI with the given arguments. Any error it returns has
// already been written to stderr.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", errorMessage(err))
		}
	}()

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webcrawl"),
		kong.Description("Crawl web sites with bounded concurrency"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webcrawl --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	defer m.Close()

	if cmd != "crawl" || !cli.Crawl.NoSave {
		if cli.DB != "" {
			m.DBPath = cli.DB
		}
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set WEBCRAWL_DB or --db to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		deps.Reports = wcslog.NewLoggingReportService(sqlite.NewReportService(m.DB), logger)
	}

	if cmd == "crawl" {
		if err := m.wireCrawl(&cli.Crawl, deps, logger); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// wireCrawl builds the fetcher chain and crawler for the crawl command.
func (m *Main) wireCrawl(c *CrawlCmd, deps *Dependencies, logger *slog.Logger) error {
	downloaderOpts := []wchttp.Option{wchttp.WithTimeout(c.Timeout)}
	if c.UserAgent != "" {
		downloaderOpts = append(downloaderOpts, wchttp.WithUserAgent(c.UserAgent))
	}

	var extractorOpts []goquery.Option
	if c.SameHost {
		extractorOpts = append(extractorOpts, goquery.WithSameHostOnly())
	}

	var downloader webcrawl.Downloader = wchttp.NewDownloader(downloaderOpts...)
	if c.Render {
		manager, err := rod.NewBrowserManager()
		if err != nil {
			return err
		}
		downloader, err = rod.NewDownloader(manager, rod.WithTimeout(c.Timeout))
		if err != nil {
			_ = manager.Close()
			return err
		}
	}
	m.Downloader = downloader

	pages := &crawl.PageFetcher{
		Downloader: downloader,
		Extractor:  goquery.NewLinkExtractor(extractorOpts...),
	}
	if c.Rate > 0 {
		pages.RateLimiter = crawl.NewDomainLimiter(c.Rate)
	}

	var fetcher webcrawl.Fetcher = pages
	if c.Out != "" {
		store := fs.NewFileStore(filepath.Dir(c.Out), filepath.Base(c.Out))
		deps.Store = store
		var archiveOpts []ArchiveOption
		switch c.MainContent {
		case "trafilatura":
			archiveOpts = append(archiveOpts, WithExtractor(trafilatura.NewExtractor()))
		case "readability":
			archiveOpts = append(archiveOpts, WithExtractor(readability.NewExtractor()))
		}
		fetcher = NewArchivingFetcher(fetcher, htmltomarkdown.NewConverter(), store, archiveOpts...)
	}
	if c.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		metrics, err := wcprom.NewMetrics(reg)
		if err != nil {
			return err
		}
		deps.Metrics = reg
		fetcher = wcprom.NewFetcher(fetcher, metrics)
	}
	fetcher = wcslog.NewLoggingFetcher(fetcher, logger)

	hostKey := crawl.HostOf
	if c.GroupBy == "domain" {
		hostKey = crawl.DomainOf
	}

	crawler, err := crawl.NewCrawler(fetcher,
		crawl.WithFetchConcurrency(c.Fetchers),
		crawl.WithExtractConcurrency(c.Extractors),
		crawl.WithPerHostConcurrency(c.PerHost),
		crawl.WithHostKey(hostKey),
	)
	if err != nil {
		return err
	}
	m.Crawler = crawler
	deps.Crawler = wcslog.NewLoggingCrawler(crawler, logger)
	return nil
}

// errorMessage returns the text shown to the user for err. Application
// errors show their message; anything else is shown in full.
func errorMessage(err error) string {
	var e *webcrawl.Error
	if errors.As(err, &e) && e.Code != webcrawl.EINTERNAL {
		return e.Message
	}
	return err.Error()
}

func defaultDBPath() string {
	if path := os.Getenv("WEBCRAWL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "webcrawl.db"
	}
	dir := filepath.Join(home, ".webcrawl")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "webcrawl.db")
}
