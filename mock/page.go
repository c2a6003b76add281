package mock

import (
	"context"

	"github.com/fwojciec/webcrawl"
)

var _ webcrawl.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of webcrawl.PageStore.
type PageStore struct {
	SaveFn   func(ctx context.Context, page *webcrawl.ArchivedPage) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *PageStore) Save(ctx context.Context, page *webcrawl.ArchivedPage) error {
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Commit() error {
	return s.CommitFn()
}

func (s *PageStore) Abort() error {
	return s.AbortFn()
}
