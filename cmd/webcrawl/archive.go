package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/goquery"
)

// Ensure ArchivingFetcher implements webcrawl.Fetcher at compile time.
var _ webcrawl.Fetcher = (*ArchivingFetcher)(nil)

// ArchivingFetcher saves a Markdown copy of every page it fetches.
// A page that cannot be archived counts as a failed fetch.
type ArchivingFetcher struct {
	next      webcrawl.Fetcher
	converter webcrawl.Converter
	store     webcrawl.PageStore
	extractor webcrawl.Extractor
}

// ArchiveOption configures an ArchivingFetcher.
type ArchiveOption func(*ArchivingFetcher)

// WithExtractor strips boilerplate with e before conversion. Pages where e
// finds no main content are archived whole.
func WithExtractor(e webcrawl.Extractor) ArchiveOption {
	return func(f *ArchivingFetcher) {
		f.extractor = e
	}
}

// NewArchivingFetcher creates a new ArchivingFetcher.
func NewArchivingFetcher(next webcrawl.Fetcher, converter webcrawl.Converter, store webcrawl.PageStore, opts ...ArchiveOption) *ArchivingFetcher {
	f := &ArchivingFetcher{
		next:      next,
		converter: converter,
		store:     store,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch delegates to the wrapped fetcher and archives the page.
func (f *ArchivingFetcher) Fetch(ctx context.Context, url string) (*webcrawl.Page, error) {
	page, err := f.next.Fetch(ctx, url)
	if err != nil || page == nil {
		return page, err
	}
	// Nothing worth keeping.
	if strings.TrimSpace(page.Body) == "" {
		return page, nil
	}

	body, title := page.Body, ""
	if f.extractor != nil {
		extracted, err := f.extractor.Extract(page.Body)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		title = extracted.Title
		if strings.TrimSpace(extracted.ContentHTML) != "" {
			body = extracted.ContentHTML
		}
	}
	if title == "" {
		title = goquery.Title(page.Body)
	}

	content, err := f.converter.Convert(body, url)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if err := f.store.Save(ctx, &webcrawl.ArchivedPage{
		URL:     url,
		Title:   title,
		Content: content,
	}); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return page, nil
}
