// Package fs provides file-based storage for archived pages.
package fs

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webcrawl"
)

// URLToPath converts a page URL to a relative file path under a directory
// named after the host, so pages from different hosts never collide.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.md
//
// A query string is folded into the file name as a hash suffix, so
// /item?id=1 and /item?id=2 map to different files. Fragments are ignored.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "URL %q has no host", rawURL)
	}
	host := strings.ReplaceAll(strings.ToLower(u.Host), ":", "_")

	p := u.Path
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", webcrawl.Errorf(webcrawl.EINVALID, "path traversal in URL %q", rawURL)
		}
	}

	suffix := ".md"
	if u.RawQuery != "" {
		suffix = "_" + strconv.FormatUint(xxhash.Sum64String(u.RawQuery), 16) + ".md"
	}

	// Handle root or trailing slash → index.md
	if p == "" || p == "/" {
		return host + "/index" + suffix, nil
	}

	p = strings.TrimPrefix(path.Clean(p), "/")

	// Trailing slash becomes index.md in that directory
	if strings.HasSuffix(u.Path, "/") {
		return host + "/" + p + "/index" + suffix, nil
	}

	return host + "/" + p + suffix, nil
}
