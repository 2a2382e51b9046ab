package service

import (
	"log/slog"

	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
)

// SyncService exposes recorded sync points and time resolution outside
// of a live session, e.g. for inspecting a prayer's timing data.
type SyncService struct {
	store  *syncpoint.Store
	logger *slog.Logger
}

// NewSyncService creates a sync service.
func NewSyncService(store *syncpoint.Store, logger *slog.Logger) *SyncService {
	return &SyncService{store: store, logger: logger}
}

// SyncPoints returns the recorded points for a prayer, ordered by
// section index. A prayer with no timestamp file yields an empty set.
func (s *SyncService) SyncPoints(prayerID string) ([]domain.SyncPoint, error) {
	return s.store.Load(prayerID)
}

// ResolveAt resolves which section owns the given playback time.
func (s *SyncService) ResolveAt(prayerID string, timeMillis int64) (syncpoint.Resolution, error) {
	points, err := s.store.Load(prayerID)
	if err != nil {
		return syncpoint.Resolution{}, err
	}
	return syncpoint.Resolve(timeMillis, points), nil
}
