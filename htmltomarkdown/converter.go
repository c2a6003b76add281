// Package htmltomarkdown converts downloaded pages to Markdown for archiving.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/webcrawl"
)

// Ensure Converter implements webcrawl.Converter at compile time.
var _ webcrawl.Converter = (*Converter)(nil)

// Converter renders HTML pages as CommonMark with table support.
// It is safe for concurrent use.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert renders html as Markdown. Relative links and images are made
// absolute against pageURL so the archived copy still points at the site.
func (c *Converter) Convert(html, pageURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}

	result, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", webcrawl.Errorf(webcrawl.EINTERNAL, "convert %s: %v", pageURL, err)
	}

	return strings.TrimSpace(result), nil
}
