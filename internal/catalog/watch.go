package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last file event before a
// rescan fires. Copying a prayer directory in produces a burst of events;
// one reload at the end is enough.
const DefaultDebounce = 500 * time.Millisecond

// Watcher rescans the catalog when files under the content root change.
type Watcher struct {
	catalog  *Catalog
	debounce time.Duration

	// OnReload is invoked after each successful rescan, outside the
	// catalog lock. Used to reindex search and notify connected clients.
	OnReload func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for the catalog. A non-positive debounce
// falls back to DefaultDebounce.
func NewWatcher(c *Catalog, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{catalog: c, debounce: debounce}
}

// Run watches the content root until ctx is cancelled. Each burst of
// file events schedules one debounced reload.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.catalog.Root()); err != nil {
		return fmt.Errorf("watch content root: %w", err)
	}
	// Watch existing prayer directories too; edits to content.txt happen
	// one level down from the root.
	for _, prayer := range w.catalog.List() {
		dir := prayerDir(prayer.ContentPath)
		if err := fsw.Add(dir); err != nil {
			w.catalog.logger.Warn("failed to watch prayer directory", "dir", dir, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// A new prayer directory needs its own watch.
				_ = fsw.Add(event.Name)
			}
			w.scheduleReload()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.catalog.logger.Warn("file watcher error", "error", err)
		}
	}
}

// scheduleReload arms the debounce timer, replacing any pending one.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if err := w.catalog.Reload(); err != nil {
			w.catalog.logger.Error("catalog reload failed", "error", err)
			return
		}
		if w.OnReload != nil {
			w.OnReload()
		}
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func prayerDir(contentPath string) string {
	return filepath.Dir(contentPath)
}
