package mock

import "github.com/fwojciec/webcrawl"

var _ webcrawl.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webcrawl.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*webcrawl.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*webcrawl.ExtractResult, error) {
	return e.ExtractFn(html)
}
