package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/munajatapp/munajat-server/internal/catalog"
	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/search"
	"github.com/munajatapp/munajat-server/internal/sse"
)

// PrayerService serves the prayer catalog and keeps the search index in
// step with it.
type PrayerService struct {
	catalog    *catalog.Catalog
	index      *search.Index
	sseManager *sse.Manager
	logger     *slog.Logger

	// Segmenting a long prayer on every request is wasteful; sections
	// only change when the catalog reloads.
	cacheMu sync.RWMutex
	cache   map[string][]domain.Section
}

// NewPrayerService creates a prayer service.
func NewPrayerService(c *catalog.Catalog, index *search.Index, sseManager *sse.Manager, logger *slog.Logger) *PrayerService {
	return &PrayerService{
		catalog:    c,
		index:      index,
		sseManager: sseManager,
		logger:     logger,
		cache:      make(map[string][]domain.Section),
	}
}

// List returns all prayers in the catalog.
func (s *PrayerService) List() []domain.Prayer {
	return s.catalog.List()
}

// GetByID looks up one prayer.
func (s *PrayerService) GetByID(id string) (domain.Prayer, error) {
	return s.catalog.GetByID(id)
}

// Sections returns the segmented content of a prayer, cached until the
// next catalog reload.
func (s *PrayerService) Sections(id string) ([]domain.Section, error) {
	s.cacheMu.RLock()
	cached, ok := s.cache[id]
	s.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	sections, err := s.catalog.Sections(id)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[id] = sections
	s.cacheMu.Unlock()
	return sections, nil
}

// Search finds sections matching the query.
func (s *PrayerService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// OnCatalogReload drops the section cache, reindexes everything and
// notifies connected clients. Wired as the catalog watcher's hook.
func (s *PrayerService) OnCatalogReload() {
	s.cacheMu.Lock()
	s.cache = make(map[string][]domain.Section)
	s.cacheMu.Unlock()

	if err := s.ReindexAll(); err != nil {
		s.logger.Error("reindex after catalog reload failed", "error", err)
	}

	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewCatalogReloadedEvent(len(s.catalog.List())))
	}
}

// ReindexAll rebuilds the search index from the current catalog.
func (s *PrayerService) ReindexAll() error {
	start := time.Now()

	if err := s.index.Rebuild(); err != nil {
		return err
	}

	var docs []*search.SectionDocument
	for _, prayer := range s.catalog.List() {
		sections, err := s.Sections(prayer.ID)
		if err != nil {
			s.logger.Warn("skipping unindexable prayer", "prayer", prayer.ID, "error", err)
			continue
		}
		for _, section := range sections {
			docs = append(docs, search.NewSectionDocument(prayer, section))
		}
	}

	if err := s.index.IndexSections(docs); err != nil {
		return err
	}

	s.logger.Info("search index rebuilt",
		"sections", len(docs),
		"took", time.Since(start))
	return nil
}
