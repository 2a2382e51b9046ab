package syncpoint

import (
	"encoding/json/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), nil)
}

func TestLoad_MissingFileIsEmptySet(t *testing.T) {
	s := newTestStore(t)

	points, err := s.Load("p1")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestLoad_MalformedFileIsEmptySet(t *testing.T) {
	s := newTestStore(t)

	dir := filepath.Dir(s.FilePath("p1"))
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(s.FilePath("p1"), []byte("{not json"), 0o600))

	points, err := s.Load("p1")
	require.NoError(t, err)
	assert.Empty(t, points)

	// The next record overwrites the malformed file rather than merging.
	require.NoError(t, s.Upsert("p1", 0, 1000, "a", "p"))
	points, err = s.Load("p1")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, int64(1000), points[0].StartTimeMillis)
}

func TestUpsert_AppendsAndSortsByIndex(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert("p1", 4, 8000, "a4", "p4"))
	require.NoError(t, s.Upsert("p1", 1, 2000, "a1", "p1"))
	require.NoError(t, s.Upsert("p1", 3, 6000, "a3", "p3"))

	points, err := s.Load("p1")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, []int{1, 3, 4}, []int{points[0].SectionIndex, points[1].SectionIndex, points[2].SectionIndex})
}

func TestUpsert_ReplaceSemantics(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert("p1", 3, 1000, "a", "p"))
	require.NoError(t, s.Upsert("p1", 3, 2000, "a", "p"))

	points, err := s.Load("p1")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 3, points[0].SectionIndex)
	assert.Equal(t, int64(2000), points[0].StartTimeMillis)
}

func TestUpsert_Idempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert("p1", 3, 1000, "a", "b"))
	require.NoError(t, s.Upsert("p1", 3, 1000, "a", "b"))

	points, err := s.Load("p1")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, domain.SyncPoint{SectionIndex: 3, StartTimeMillis: 1000, Arabic: "a", Persian: "b"}, points[0])
}

func TestUpsert_ValidatesInput(t *testing.T) {
	s := newTestStore(t)

	err := s.Upsert("p1", -1, 1000, "a", "p")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	err = s.Upsert("p1", 0, -5, "a", "p")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestUpsert_PersistedFileFormat(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert("p1", 0, 1500, "بسم الله", "به نام خدا"))

	data, err := os.ReadFile(s.FilePath("p1"))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Contains(t, raw[0], "sectionIndex")
	assert.Contains(t, raw[0], "startTime")
	assert.Contains(t, raw[0], "arabic")
	assert.Contains(t, raw[0], "persian")
}

func TestUpsert_PrayersAreIsolated(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert("p1", 0, 100, "a", "p"))
	require.NoError(t, s.Upsert("p2", 0, 900, "a", "p"))

	p1, err := s.Load("p1")
	require.NoError(t, err)
	p2, err := s.Load("p2")
	require.NoError(t, err)

	assert.Equal(t, int64(100), p1[0].StartTimeMillis)
	assert.Equal(t, int64(900), p2[0].StartTimeMillis)
}

func TestUpsert_ConcurrentSamePrayer(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Upsert("p1", i, int64(i)*1000, "a", "p"))
		}()
	}
	wg.Wait()

	points, err := s.Load("p1")
	require.NoError(t, err)
	assert.Len(t, points, 20)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].SectionIndex, points[i-1].SectionIndex)
	}
}
