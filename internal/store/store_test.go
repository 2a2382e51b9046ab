package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munajatapp/munajat-server/internal/domain"
	apperrors "github.com/munajatapp/munajat-server/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCalibrationRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cal := domain.ScrollCalibration{
		PrayerID:      "dua-kumayl",
		AverageHeight: 115.5,
		Samples: []domain.HeightSample{
			{SectionIndex: 0, Height: 100},
			{SectionIndex: 1, Height: 131},
		},
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.SaveCalibration(cal))

	got, err := s.GetCalibration("dua-kumayl")
	require.NoError(t, err)
	assert.Equal(t, cal.PrayerID, got.PrayerID)
	assert.Equal(t, cal.AverageHeight, got.AverageHeight)
	assert.Equal(t, cal.Samples, got.Samples)
}

func TestCalibrationNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCalibration("never-calibrated")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSaveCalibrationReplaces(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveCalibration(domain.ScrollCalibration{PrayerID: "p", AverageHeight: 100}))
	require.NoError(t, s.SaveCalibration(domain.ScrollCalibration{PrayerID: "p", AverageHeight: 140}))

	got, err := s.GetCalibration("p")
	require.NoError(t, err)
	assert.Equal(t, 140.0, got.AverageHeight)
}

func TestSaveCalibrationRequiresPrayerID(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveCalibration(domain.ScrollCalibration{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestDeleteCalibration(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveCalibration(domain.ScrollCalibration{PrayerID: "p", AverageHeight: 100}))
	require.NoError(t, s.DeleteCalibration("p"))

	_, err := s.GetCalibration("p")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// Deleting again is fine.
	require.NoError(t, s.DeleteCalibration("p"))
}

func TestProgressRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := domain.PlaybackProgress{
		DeviceID:           "cli-abc",
		PrayerID:           "dua-kumayl",
		PositionMillis:     42_500,
		DurationMillis:     600_000,
		ActiveSectionIndex: 7,
	}
	require.NoError(t, s.UpsertProgress(p))

	got, err := s.GetProgress("cli-abc", "dua-kumayl")
	require.NoError(t, err)
	assert.Equal(t, int64(42_500), got.PositionMillis)
	assert.Equal(t, 7, got.ActiveSectionIndex)
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt is stamped on save")
}

func TestProgressIsolatedPerDevice(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertProgress(domain.PlaybackProgress{
		DeviceID: "cli-a", PrayerID: "p1", PositionMillis: 1000,
	}))
	require.NoError(t, s.UpsertProgress(domain.PlaybackProgress{
		DeviceID: "cli-b", PrayerID: "p1", PositionMillis: 9000,
	}))

	a, err := s.GetProgress("cli-a", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), a.PositionMillis)

	b, err := s.GetProgress("cli-b", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(9000), b.PositionMillis)
}

func TestListProgressForDevice(t *testing.T) {
	s := newTestStore(t)

	older := time.Now().Add(-time.Hour)
	require.NoError(t, s.UpsertProgress(domain.PlaybackProgress{
		DeviceID: "cli-a", PrayerID: "p1", PositionMillis: 1000, UpdatedAt: older,
	}))
	require.NoError(t, s.UpsertProgress(domain.PlaybackProgress{
		DeviceID: "cli-a", PrayerID: "p2", PositionMillis: 2000, UpdatedAt: time.Now(),
	}))
	require.NoError(t, s.UpsertProgress(domain.PlaybackProgress{
		DeviceID: "cli-other", PrayerID: "p1", PositionMillis: 3000,
	}))

	list, err := s.ListProgressForDevice("cli-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].PrayerID, "newest first")
	assert.Equal(t, "p1", list[1].PrayerID)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.SaveCalibration(domain.ScrollCalibration{PrayerID: "p", AverageHeight: 123}))
	require.NoError(t, s.Close())

	s2, err := New(dir, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetCalibration("p")
	require.NoError(t, err)
	assert.Equal(t, 123.0, got.AverageHeight)
}
