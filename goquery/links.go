// Package goquery extracts links from HTML documents using goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webcrawl"
)

// Compile-time interface verification.
var _ webcrawl.LinkExtractor = (*LinkExtractor)(nil)

// linkSelector matches every element whose href is a navigable link.
const linkSelector = "a[href], area[href]"

// LinkExtractor finds outbound links in HTML pages.
type LinkExtractor struct {
	sameHostOnly bool
}

// Option configures a LinkExtractor.
type Option func(*LinkExtractor)

// WithSameHostOnly drops links whose host differs from the page's host.
// Subdomains count as different hosts.
func WithSameHostOnly() Option {
	return func(e *LinkExtractor) {
		e.sameHostOnly = true
	}
}

// NewLinkExtractor creates a LinkExtractor.
func NewLinkExtractor(opts ...Option) *LinkExtractor {
	e := &LinkExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLinks returns the absolute http(s) URLs that html links to, in
// document order and without duplicates. Relative links are resolved
// against the document's <base href> if present, otherwise baseURL.
// Fragments are stripped and links back to the page itself are dropped.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	page, err := url.Parse(baseURL)
	if err != nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	base := page
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = page.ResolveReference(ref)
		}
	}

	self := *page
	self.Fragment = ""
	selfURL := self.String()

	seen := make(map[string]struct{})
	var links []string
	doc.Find(linkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if e.sameHostOnly && !strings.EqualFold(resolved.Host, page.Host) {
			return
		}

		link := resolved.String()
		if link == selfURL {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links, nil
}

// resolveURL resolves href against base and strips the fragment.
// Returns nil if href cannot be parsed.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved
}

// isNonHTTPLink checks if a href is a pseudo-link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
