package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/munajatapp/munajat-server/internal/config"
	"github.com/munajatapp/munajat-server/internal/logger"
	"github.com/munajatapp/munajat-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the full-text section index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexPath := filepath.Join(cfg.Sync.DataPath, "search")
	idx, err := search.NewIndex(search.Options{
		DataPath: indexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	count, _ := idx.DocumentCount()
	log.Info("Search index opened", "path", indexPath, "documents", count)

	return &SearchIndexHandle{Index: idx}, nil
}
