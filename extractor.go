package webcrawl

// ExtractResult holds the main content of an archived page.
type ExtractResult struct {
	// Title is the page title taken from metadata.
	Title string

	// ContentHTML is the main content with navigation, footers and
	// sidebars removed.
	ContentHTML string
}

// Extractor strips boilerplate from a page before it is archived.
type Extractor interface {
	// Extract returns the main content of html. An empty ContentHTML means
	// no main content was found.
	Extract(html string) (*ExtractResult, error)
}
