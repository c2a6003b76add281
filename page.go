package webcrawl

import "context"

// ArchivedPage is a downloaded page converted for storage on disk.
type ArchivedPage struct {
	URL     string
	Title   string
	Content string // Markdown
}

// PageStore persists pages to storage with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type PageStore interface {
	Save(ctx context.Context, page *ArchivedPage) error
	Commit() error
	Abort() error
}
