// Package catalog discovers prayers on disk and serves their content.
//
// Layout: each prayer lives in its own directory under the content root:
//
//	<root>/<prayer-id>/content.txt   bilingual text, ◎-delimited
//	<root>/<prayer-id>/audio.mp3     recitation audio
//	<root>/<prayer-id>/prayer.json   optional metadata (title, duration)
//
// The directory name is the prayer ID. Directories missing content.txt
// or audio.mp3 are skipped with a warning.
package catalog

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/munajatapp/munajat-server/internal/domain"
	apperrors "github.com/munajatapp/munajat-server/internal/errors"
	"github.com/munajatapp/munajat-server/internal/segment"
)

const (
	contentFileName  = "content.txt"
	audioFileName    = "audio.mp3"
	metadataFileName = "prayer.json"
)

// metadata is the optional prayer.json sidecar.
type metadata struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	DurationMillis int64  `json:"durationMillis,omitempty"`
}

// Catalog is the in-memory view of the prayers on disk. Reload replaces
// the whole view atomically; readers never see a half-scanned state.
type Catalog struct {
	root   string
	logger *slog.Logger

	mu      sync.RWMutex
	prayers map[string]domain.Prayer
	order   []string
}

// New creates a catalog rooted at dir and performs the initial scan.
func New(root string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Catalog{
		root:    root,
		logger:  logger,
		prayers: make(map[string]domain.Prayer),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload rescans the content root and swaps in the new view.
func (c *Catalog) Reload() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return fmt.Errorf("read content root %s: %w", c.root, err)
	}

	prayers := make(map[string]domain.Prayer)
	var order []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		prayer, ok := c.scanPrayer(id)
		if !ok {
			continue
		}
		prayers[id] = prayer
		order = append(order, id)
	}
	sort.Strings(order)

	c.mu.Lock()
	c.prayers = prayers
	c.order = order
	c.mu.Unlock()

	c.logger.Info("catalog loaded", "prayers", len(order), "root", c.root)
	return nil
}

// scanPrayer reads one prayer directory. Incomplete directories are
// skipped rather than failing the whole scan.
func (c *Catalog) scanPrayer(id string) (domain.Prayer, bool) {
	dir := filepath.Join(c.root, id)
	contentPath := filepath.Join(dir, contentFileName)
	audioPath := filepath.Join(dir, audioFileName)

	if _, err := os.Stat(contentPath); err != nil {
		c.logger.Warn("skipping prayer without content file", "prayer", id)
		return domain.Prayer{}, false
	}
	if _, err := os.Stat(audioPath); err != nil {
		c.logger.Warn("skipping prayer without audio file", "prayer", id)
		return domain.Prayer{}, false
	}

	prayer := domain.Prayer{
		ID:          id,
		Title:       id,
		ContentPath: contentPath,
		AudioPath:   audioPath,
	}

	if raw, err := os.ReadFile(filepath.Join(dir, metadataFileName)); err == nil {
		var meta metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			c.logger.Warn("ignoring malformed prayer metadata", "prayer", id, "error", err)
		} else {
			if meta.Title != "" {
				prayer.Title = meta.Title
			}
			prayer.Description = meta.Description
			prayer.DurationMillis = meta.DurationMillis
		}
	}

	return prayer, true
}

// List returns all prayers ordered by ID.
func (c *Catalog) List() []domain.Prayer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Prayer, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.prayers[id])
	}
	return out
}

// GetByID looks up one prayer. Unknown IDs are an error, never silently
// remapped to some default prayer.
func (c *Catalog) GetByID(id string) (domain.Prayer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prayer, ok := c.prayers[id]
	if !ok {
		return domain.Prayer{}, apperrors.NotFoundf("prayer %s not found", id)
	}
	return prayer, nil
}

// Sections reads and segments a prayer's content file.
func (c *Catalog) Sections(id string) ([]domain.Section, error) {
	prayer, err := c.GetByID(id)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(prayer.ContentPath)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodePersistence, "read content for prayer %s", id)
	}

	sections, err := segment.Segment(string(raw))
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeContentFormat, "segment content for prayer %s", id)
	}
	return sections, nil
}

// Root returns the content root directory the catalog scans.
func (c *Catalog) Root() string {
	return c.root
}
