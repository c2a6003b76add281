// Package trafilatura extracts the main content of archived pages with
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/webcrawl"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements webcrawl.Extractor at compile time.
var _ webcrawl.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	fallback bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithoutFallback disables the readability and dom-distiller fallbacks
// trafilatura tries when its own heuristics find too little text.
func WithoutFallback() Option {
	return func(e *Extractor) {
		e.fallback = false
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{fallback: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*webcrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: e.fallback,
	})
	if err != nil {
		return nil, &webcrawl.Error{Code: webcrawl.EINTERNAL, Message: "extracting main content", Err: err}
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &webcrawl.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
