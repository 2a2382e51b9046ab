package providers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/munajatapp/munajat-server/internal/catalog"
	"github.com/munajatapp/munajat-server/internal/config"
	"github.com/munajatapp/munajat-server/internal/logger"
	"github.com/munajatapp/munajat-server/internal/service"
)

// ProvideCatalog provides the on-disk prayer catalog.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	root := cfg.Content.BasePath
	if root == "" {
		// No content path configured: start with an empty catalog rooted
		// under the data directory so prayers can be dropped in later.
		root = filepath.Join(cfg.Sync.DataPath, "content")
		log.Info("No content path configured, using default", "path", root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	return catalog.New(root, log.Logger)
}

// CatalogWatcherHandle wraps the content watcher with its context for
// lifecycle management.
type CatalogWatcherHandle struct {
	*catalog.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogWatcherHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideCatalogWatcher provides the content directory watcher. The
// watcher rescans the catalog on changes and then refreshes the prayer
// service cache and search index.
func ProvideCatalogWatcher(i do.Injector) (*CatalogWatcherHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	prayers := do.MustInvoke[*service.PrayerService](i)

	w := catalog.NewWatcher(cat, catalog.DefaultDebounce)
	w.OnReload = prayers.OnCatalogReload

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("Content watcher stopped", "error", err)
		}
	}()

	log.Info("Content watcher started", "root", cat.Root())

	return &CatalogWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
