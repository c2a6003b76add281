package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Title returns the trimmed text of the document's <title>, falling back
// to its first <h1>. Returns "" if neither is present or html cannot be
// parsed.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
