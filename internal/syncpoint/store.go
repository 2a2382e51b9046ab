// Package syncpoint persists and resolves section-to-audio-time mappings.
//
// Each prayer has one timestamp file: a JSON array of
// {sectionIndex, startTime, arabic, persian} objects kept sorted by section
// index. The file is the unit of persistence - every successful record
// rewrites it in full, so a mutation is either durable or reported failed.
package syncpoint

import (
	"encoding/json/v2"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/errors"
)

const timestampsFile = "timestamps.json"

// Store reads and writes per-prayer timestamp files.
//
// Upserts for the same prayer are serialized internally with a per-prayer
// lock; the read-modify-write is otherwise last-write-wins.
type Store struct {
	dataPath string
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at dataPath.
// Timestamp files live at <dataPath>/prayers/<prayerID>/timestamps.json.
func NewStore(dataPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		dataPath: dataPath,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Load reads the persisted sync points for a prayer, sorted by section index.
// A missing file is an empty set, not an error. A malformed file is treated
// as empty (it will be overwritten on the next record) and logged.
func (s *Store) Load(prayerID string) ([]domain.SyncPoint, error) {
	data, err := os.ReadFile(s.filePath(prayerID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.SyncPoint{}, nil
		}
		return nil, errors.Wrapf(err, errors.CodePersistence, "read timestamps for %s", prayerID)
	}

	var points []domain.SyncPoint
	if err := json.Unmarshal(data, &points); err != nil {
		s.logger.Warn("malformed timestamp file, treating as empty",
			"prayer_id", prayerID,
			"error", err,
		)
		return []domain.SyncPoint{}, nil
	}

	domain.SortSyncPointsByIndex(points)
	return points, nil
}

// Upsert records a sync point for a section, replacing any existing point
// with the same section index, and persists the full set sorted by index.
// On write failure the on-disk set is left unchanged and the caller may
// retry the same action.
func (s *Store) Upsert(prayerID string, idx int, startTimeMillis int64, arabic, persian string) error {
	if idx < 0 {
		return errors.Validationf("section index must be non-negative, got %d", idx)
	}
	if startTimeMillis < 0 {
		return errors.Validationf("start time must be non-negative, got %d", startTimeMillis)
	}

	lock := s.prayerLock(prayerID)
	lock.Lock()
	defer lock.Unlock()

	points, err := s.Load(prayerID)
	if err != nil {
		return err
	}

	point := domain.SyncPoint{
		SectionIndex:    idx,
		StartTimeMillis: startTimeMillis,
		Arabic:          arabic,
		Persian:         persian,
	}

	replaced := false
	for i := range points {
		if points[i].SectionIndex == idx {
			points[i] = point
			replaced = true
			break
		}
	}
	if !replaced {
		points = append(points, point)
	}

	domain.SortSyncPointsByIndex(points)

	if err := s.write(prayerID, points); err != nil {
		return err
	}

	s.logger.Debug("sync point recorded",
		"prayer_id", prayerID,
		"section_index", idx,
		"start_time_ms", startTimeMillis,
		"replaced", replaced,
	)
	return nil
}

// write persists the full point set atomically: write to a temp file in the
// same directory, then rename over the target.
func (s *Store) write(prayerID string, points []domain.SyncPoint) error {
	dir := filepath.Dir(s.filePath(prayerID))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "create timestamps directory for %s", prayerID)
	}

	data, err := json.Marshal(points)
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "marshal timestamps for %s", prayerID)
	}

	tmp, err := os.CreateTemp(dir, timestampsFile+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "create temp file for %s", prayerID)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.CodePersistence, "write timestamps for %s", prayerID)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.CodePersistence, "close timestamps for %s", prayerID)
	}

	if err := os.Rename(tmpName, s.filePath(prayerID)); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.CodePersistence, "replace timestamps for %s", prayerID)
	}

	return nil
}

func (s *Store) filePath(prayerID string) string {
	return filepath.Join(s.dataPath, "prayers", prayerID, timestampsFile)
}

// prayerLock returns the mutex serializing writes for one prayer.
func (s *Store) prayerLock(prayerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[prayerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[prayerID] = lock
	}
	return lock
}

// FilePath exposes the timestamp file location for a prayer, mainly for
// diagnostics output.
func (s *Store) FilePath(prayerID string) string {
	return s.filePath(prayerID)
}
