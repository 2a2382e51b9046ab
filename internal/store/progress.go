package store

import (
	"encoding/json/v2"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/munajatapp/munajat-server/internal/domain"
	apperrors "github.com/munajatapp/munajat-server/internal/errors"
)

// UpsertProgress stores the latest playback position for a device and
// prayer pair. Later writes replace earlier ones.
func (s *Store) UpsertProgress(p domain.PlaybackProgress) error {
	if p.DeviceID == "" || p.PrayerID == "" {
		return apperrors.Validation("progress requires device id and prayer id")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	key := []byte(progressPrefix + domain.ProgressID(p.DeviceID, p.PrayerID))
	if err := s.set(key, p); err != nil {
		return apperrors.Wrapf(err, apperrors.CodePersistence, "save progress for %s/%s", p.DeviceID, p.PrayerID)
	}
	return nil
}

// GetProgress loads the last saved position for a device and prayer.
func (s *Store) GetProgress(deviceID, prayerID string) (domain.PlaybackProgress, error) {
	var p domain.PlaybackProgress
	key := []byte(progressPrefix + domain.ProgressID(deviceID, prayerID))
	err := s.get(key, &p)
	if isNotFound(err) {
		return domain.PlaybackProgress{}, apperrors.NotFoundf("no progress for device %s on prayer %s", deviceID, prayerID)
	}
	if err != nil {
		return domain.PlaybackProgress{}, apperrors.Wrapf(err, apperrors.CodePersistence, "load progress for %s/%s", deviceID, prayerID)
	}
	return p, nil
}

// ListProgressForDevice returns every saved position for a device,
// newest first. Used when the app reopens and offers to resume.
func (s *Store) ListProgressForDevice(deviceID string) ([]domain.PlaybackProgress, error) {
	prefix := []byte(progressPrefix + deviceID + ":")

	var out []domain.PlaybackProgress
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var p domain.PlaybackProgress
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodePersistence, "list progress for device %s", deviceID)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
