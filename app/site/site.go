// Package site serves the output directory of an external static-site
// generator and rewrites HTML pages on the way out so the body and toggle
// control carry the visitor's theme classes.
package site

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-pkgz/lcw/v2"
	log "github.com/go-pkgz/lgr"
)

// Site provides access to the generated site directory with a loading cache
// for page bytes. The generator rebuilds the directory out-of-band, the
// watcher invalidates the cache when that happens.
type Site struct {
	dir   string
	cache lcw.LoadingCache[[]byte]
}

// New creates a Site rooted at dir. maxCached limits the number of pages
// kept in memory.
func New(dir string, maxCached int) (*Site, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site dir %q is not a directory", dir)
	}

	cache, err := lcw.NewLruCache(lcw.NewOpts[[]byte]().MaxKeys(maxCached))
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}
	return &Site{dir: dir, cache: cache}, nil
}

// Resolve maps a URL path to a relative file path under the site dir and
// reports whether it is an HTML page. Directory paths resolve to their
// index.html. Returns fs.ErrNotExist (wrapped) when nothing matches.
func (s *Site) Resolve(urlPath string) (rel string, isHTML bool, err error) {
	rel = strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if rel == "" || rel == "." {
		rel = "index.html"
	}

	full := filepath.Join(s.dir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return "", false, fmt.Errorf("resolve %q: %w", urlPath, err)
	}
	if info.IsDir() {
		rel = path.Join(rel, "index.html")
		if _, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(rel))); err != nil {
			return "", false, fmt.Errorf("resolve %q: %w", urlPath, err)
		}
	}

	ext := strings.ToLower(path.Ext(rel))
	return rel, ext == ".html" || ext == ".htm", nil
}

// Page returns the raw bytes of an HTML page, cached until the watcher
// sees the site change.
func (s *Site) Page(rel string) ([]byte, error) {
	data, err := s.cache.Get(rel, func() ([]byte, error) {
		b, readErr := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(rel)))
		if readErr != nil {
			return nil, fmt.Errorf("read page: %w", readErr)
		}
		return b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", rel, err)
	}
	return data, nil
}

// FilePath returns the absolute path of a resolved asset for direct serving.
func (s *Site) FilePath(rel string) string {
	return filepath.Join(s.dir, filepath.FromSlash(rel))
}

// Invalidate drops all cached pages.
func (s *Site) Invalidate() {
	s.cache.Invalidate(func(string) bool { return true })
}

// Close releases the page cache.
func (s *Site) Close() error {
	return s.cache.Close() //nolint:wrapcheck // nothing to add
}

// Check walks the site and warns about HTML pages missing the body element
// or the toggle control. A page without hooks still serves fine, the theme
// rewrite just degrades to a no-op for the missing element.
func (s *Site) Check() error {
	var pages, missing int
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".html" && ext != ".htm" {
			return nil
		}
		pages++

		raw, readErr := os.ReadFile(p)
		if readErr != nil {
			log.Printf("[WARN] can't read page %s: %v", p, readErr)
			return nil
		}
		rw, parseErr := NewRewriter(raw)
		if parseErr != nil {
			log.Printf("[WARN] can't parse page %s: %v", p, parseErr)
			return nil
		}
		if !rw.HasBody() {
			log.Printf("[WARN] page %s has no body element, theme classes won't apply", p)
			missing++
		}
		if !rw.HasToggle() {
			log.Printf("[WARN] page %s has no #%s control", p, ToggleControlID)
			missing++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("site check: %w", err)
	}

	log.Printf("[INFO] site check completed, %d pages, %d missing theme hooks", pages, missing)
	return nil
}
