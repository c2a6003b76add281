package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Crawler webcrawl.Crawler
	Reports webcrawl.ReportService
	Store   webcrawl.PageStore
	Metrics prometheus.Gatherer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"WEBCRAWL_DB" help:"Database path (default: $WEBCRAWL_DB or ~/.webcrawl/webcrawl.db)"`
	Verbose bool   `short:"v" help:"Log every fetch to stderr"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl a site from a root URL"`
	List   ListCmd   `cmd:"" help:"List saved crawl reports"`
	Show   ShowCmd   `cmd:"" help:"Show a crawl report"`
	Delete DeleteCmd `cmd:"" help:"Delete a crawl report"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string        `arg:"" help:"Root URL to start from"`
	Depth       int           `short:"d" default:"2" help:"Number of link levels to fetch (1 fetches only the root)"`
	Fetchers    int           `short:"f" env:"WEBCRAWL_FETCHERS" default:"8" help:"Concurrent fetch limit"`
	Extractors  int           `short:"e" env:"WEBCRAWL_EXTRACTORS" default:"2" help:"Concurrent link fan-out limit"`
	PerHost     int           `name:"per-host" env:"WEBCRAWL_PER_HOST" default:"0" help:"Concurrent fetch limit per host (0 uses --fetchers)"`
	GroupBy     string        `name:"group-by" enum:"host,domain" default:"host" help:"Group per-host limits by host or registrable domain"`
	SameHost    bool          `name:"same-host" help:"Only follow links to the root's host"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Rate        float64       `default:"0" help:"Requests per second per host (0 disables)"`
	UserAgent   string        `name:"user-agent" env:"WEBCRAWL_USER_AGENT" help:"User-Agent header to send"`
	Render      bool          `help:"Render pages in headless Chrome before extracting links"`
	Out         string        `short:"o" type:"path" help:"Archive downloaded pages as Markdown under this directory"`
	MainContent string        `name:"main-content" enum:"off,trafilatura,readability" default:"off" help:"Archive only the main content, found with trafilatura or readability"`
	MetricsFile string        `name:"metrics-file" type:"path" help:"Write Prometheus metrics to this file after the crawl"`
	NoSave      bool          `name:"no-save" help:"Do not store a report"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Root  string `help:"Only reports crawled from this root URL"`
	Page  string `help:"Only reports that visited this URL"`
	Limit int    `short:"n" default:"20" help:"Maximum number of reports"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID   string `arg:"" help:"Report ID"`
	JSON bool   `name:"json" help:"Print the report as JSON"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Report ID"`
	Force bool   `help:"Confirm deletion"`
}
