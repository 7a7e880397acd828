package catalog

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the override file whenever it is written, until ctx is
// cancelled. The parent directory is watched rather than the file itself so
// editors that replace the file atomically still trigger a reload; reloads
// are debounced because a single save often produces several events.
func (c *Catalog) Watch(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch catalog dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		var reload *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if changed, _ := filepath.Abs(event.Name); changed != absPath {
					continue
				}
				if reload != nil {
					reload.Stop()
				}
				reload = time.AfterFunc(500*time.Millisecond, func() {
					if err := c.LoadFile(absPath); err != nil {
						log.Printf("catalog watcher: reload failed: %v", err)
						return
					}
					log.Printf("catalog watcher: reloaded %s", absPath)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("catalog watcher: error: %v", err)
			}
		}
	}()

	return nil
}
