// Package readability extracts the main content of archived pages with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/webcrawl"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements webcrawl.Extractor at compile time.
var _ webcrawl.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*webcrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, &webcrawl.Error{Code: webcrawl.EINTERNAL, Message: "extracting main content", Err: err}
	}

	return &webcrawl.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
