package crawl

import (
	"net"
	"net/url"
	"strings"

	"github.com/fwojciec/webcrawl"
	"golang.org/x/net/publicsuffix"
)

// HostKeyFunc maps a URL to the key its fetches are throttled under.
type HostKeyFunc func(rawURL string) (string, error)

// HostOf returns the lower-cased authority (host and optional port) of an
// absolute URL. URLs without a scheme or host are rejected.
func HostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "URL %q has no host", rawURL)
	}
	return strings.ToLower(u.Host), nil
}

// DomainOf returns the registrable domain (public suffix plus one label) of
// an absolute URL, so that subdomains of one site share a single key.
// Hosts that have no registrable domain, such as IP addresses or
// localhost, fall back to the bare hostname.
func DomainOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	hostname := strings.ToLower(u.Hostname())
	if u.Scheme == "" || hostname == "" {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "URL %q has no host", rawURL)
	}
	if net.ParseIP(hostname) != nil {
		return hostname, nil
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(hostname)
	if err != nil {
		return hostname, nil
	}
	return domain, nil
}
