package rod_test

import (
	"testing"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/rod"
	"github.com/stretchr/testify/assert"
)

func TestNewDownloader_RequiresManager(t *testing.T) {
	t.Parallel()

	_, err := rod.NewDownloader(nil)

	assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err))
}

func TestNewBrowserManager_RejectsNonPositiveMaxPages(t *testing.T) {
	t.Parallel()

	// Validation happens before any browser is launched.
	_, err := rod.NewBrowserManager(rod.WithMaxPages(0))

	assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err))
}
