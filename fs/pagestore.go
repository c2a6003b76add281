package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Ensure FileStore implements webcrawl.PageStore at compile time.
var _ webcrawl.PageStore = (*FileStore)(nil)

// FileStore implements webcrawl.PageStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved atomically on Commit.
// Save may be called from several goroutines at once.
//
// Two URLs that map to the same file (for example /a/ and /a/index) cannot
// both be saved: the second Save fails rather than overwrite the first.
type FileStore struct {
	baseDir string
	name    string
	now     func() time.Time

	mu    sync.Mutex
	saved map[string]string // relative path -> URL
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
		now:     time.Now,
		saved:   make(map[string]string),
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes page below the temporary directory.
func (s *FileStore) Save(ctx context.Context, page *webcrawl.ArchivedPage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	if err := s.claim(relPath, page.URL); err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	content := FormatPage(page, s.now())
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// claim reserves relPath for url until the next Commit or Abort.
func (s *FileStore) claim(relPath, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.saved[relPath]; ok && prev != url {
		return webcrawl.Errorf(webcrawl.EINVALID, "archive path %q already holds %s", relPath, prev)
	}
	s.saved[relPath] = url
	return nil
}

func (s *FileStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = make(map[string]string)
}

// FormatPage formats a page with YAML frontmatter.
func FormatPage(page *webcrawl.ArchivedPage, crawled time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	if page.Title != "" {
		b.WriteString("\ntitle: ")
		b.WriteString(page.Title)
	}
	b.WriteString("\ncrawled: ")
	b.WriteString(crawled.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// Commit replaces the output directory with everything saved so far.
func (s *FileStore) Commit() error {
	defer s.reset()

	// Nothing saved; leave any previous output in place.
	if _, err := os.Stat(s.tempDir()); os.IsNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything saved since the store was created.
func (s *FileStore) Abort() error {
	defer s.reset()
	return os.RemoveAll(s.tempDir())
}
