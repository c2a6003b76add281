package webcrawl

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms the HTML of the page at pageURL into Markdown.
	Convert(html, pageURL string) (string, error)
}
