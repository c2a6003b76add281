package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements webcrawl.Converter at compile time.
var _ webcrawl.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and paragraphs", func(t *testing.T) {
		t.Parallel()

		html := `<h1>Title</h1><h2>Subtitle</h2><p>Hello, world!</p>`

		md, err := htmltomarkdown.NewConverter().Convert(html, "https://example.com/")

		require.NoError(t, err)
		assert.Contains(t, md, "# Title")
		assert.Contains(t, md, "## Subtitle")
		assert.Contains(t, md, "Hello, world!")
	})

	t.Run("makes relative links absolute", func(t *testing.T) {
		t.Parallel()

		html := `<p>See <a href="/docs/guide">the guide</a>.</p>`

		md, err := htmltomarkdown.NewConverter().Convert(html, "https://example.com/start")

		require.NoError(t, err)
		assert.Contains(t, md, "[the guide](https://example.com/docs/guide)")
	})

	t.Run("keeps absolute links", func(t *testing.T) {
		t.Parallel()

		html := `<a href="https://other.com/x">elsewhere</a>`

		md, err := htmltomarkdown.NewConverter().Convert(html, "https://example.com/")

		require.NoError(t, err)
		assert.Contains(t, md, "[elsewhere](https://other.com/x)")
	})

	t.Run("converts lists", func(t *testing.T) {
		t.Parallel()

		html := `<ul><li>First</li><li>Second</li></ul>`

		md, err := htmltomarkdown.NewConverter().Convert(html, "")

		require.NoError(t, err)
		assert.Contains(t, md, "First")
		assert.Contains(t, md, "Second")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Name</th><th>Status</th></tr></thead>
<tbody><tr><td>a.com</td><td>200</td></tr></tbody>
</table>`

		md, err := htmltomarkdown.NewConverter().Convert(html, "")

		require.NoError(t, err)
		assert.Contains(t, md, "| Name")
		assert.Contains(t, md, "a.com")
	})

	t.Run("drops scripts and styles", func(t *testing.T) {
		t.Parallel()

		html := `<style>p{color:red}</style><script>alert(1)</script><p>Visible</p>`

		md, err := htmltomarkdown.NewConverter().Convert(html, "")

		require.NoError(t, err)
		assert.Equal(t, "Visible", md)
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("   \n", "https://example.com/")

		assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err))
	})
}
