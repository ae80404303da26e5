package site

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/go-pkgz/lgr"
)

// Watch invalidates the page cache whenever the generator rewrites the site
// directory. Blocks until the context is canceled; run it in a goroutine.
func (s *Site) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// watch the root and every subdirectory, generators write nested trees
	walkErr := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch site dir: %w", walkErr)
	}

	log.Printf("[DEBUG] watching site dir %s", s.dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// new directories need their own watch
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := watcher.Add(event.Name); addErr != nil {
						log.Printf("[WARN] can't watch new dir %s: %v", event.Name, addErr)
					}
				}
			}
			log.Printf("[DEBUG] site changed (%s), dropping page cache", event.Name)
			s.Invalidate()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[WARN] site watcher error: %v", watchErr)
		}
	}
}
