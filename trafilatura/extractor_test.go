package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("")

		assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err))
	})

	t.Run("extracts title from meta tags", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Pricing - Example Shop</title>
<meta property="og:title" content="Pricing">
</head>
<body>
<nav>Navigation here</nav>
<main>
<h1>Pricing</h1>
<p>Every plan includes unlimited projects and email support.</p>
</main>
<footer>Footer content</footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/">Home</a><a href="/blog">Blog</a></nav>
<article>
<h1>Release notes</h1>
<p>This release makes the crawler faster on sites with many small pages.</p>
<pre><code>webcrawl crawl https://example.com/ --depth 3</code></pre>
</article>
<aside>Sidebar content</aside>
<footer>Copyright 2026</footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "crawler faster on sites")
		assert.Contains(t, result.ContentHTML, "webcrawl crawl")
	})

	t.Run("removes navigation boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav class="main-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/about">About</a></li>
</ul>
</nav>
<main>
<h1>Main Content</h1>
<p>This paragraph contains the actual content we want.</p>
</main>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "actual content we want")
		assert.NotContains(t, result.ContentHTML, "main-nav")
	})

	t.Run("removes footer boilerplate without fallback", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<article>
<h1>Article Title</h1>
<p>Article body with substantive content for readers. The crawler visits every page reachable from the root address, up to the requested depth, and never opens more connections to one host than the per-host limit allows.</p>
<p>Pages that fail are listed separately from pages that were downloaded, so a report always accounts for every address the crawl discovered along the way.</p>
</article>
<footer>
<p>Copyright 2026 Example Corp</p>
</footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor(trafilatura.WithoutFallback()).Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "substantive content")
		assert.NotContains(t, result.ContentHTML, "Copyright 2026 Example Corp")
	})
}
