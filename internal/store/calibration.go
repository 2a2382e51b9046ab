package store

import (
	"time"

	"github.com/munajatapp/munajat-server/internal/domain"
	apperrors "github.com/munajatapp/munajat-server/internal/errors"
)

// SaveCalibration stores the scroll calibration for a prayer, replacing
// any previous one.
func (s *Store) SaveCalibration(cal domain.ScrollCalibration) error {
	if cal.PrayerID == "" {
		return apperrors.Validation("calibration prayer id is required")
	}
	if cal.UpdatedAt.IsZero() {
		cal.UpdatedAt = time.Now()
	}

	key := []byte(calibrationPrefix + cal.PrayerID)
	if err := s.set(key, cal); err != nil {
		return apperrors.Wrapf(err, apperrors.CodePersistence, "save calibration for %s", cal.PrayerID)
	}
	return nil
}

// GetCalibration loads the scroll calibration for a prayer. A prayer
// that was never calibrated returns a not found error; callers fall back
// to the default item height.
func (s *Store) GetCalibration(prayerID string) (domain.ScrollCalibration, error) {
	var cal domain.ScrollCalibration
	key := []byte(calibrationPrefix + prayerID)
	err := s.get(key, &cal)
	if isNotFound(err) {
		return domain.ScrollCalibration{}, apperrors.NotFoundf("no calibration for prayer %s", prayerID)
	}
	if err != nil {
		return domain.ScrollCalibration{}, apperrors.Wrapf(err, apperrors.CodePersistence, "load calibration for %s", prayerID)
	}
	return cal, nil
}

// DeleteCalibration removes a prayer's calibration.
func (s *Store) DeleteCalibration(prayerID string) error {
	if err := s.delete([]byte(calibrationPrefix + prayerID)); err != nil {
		return apperrors.Wrapf(err, apperrors.CodePersistence, "delete calibration for %s", prayerID)
	}
	return nil
}
