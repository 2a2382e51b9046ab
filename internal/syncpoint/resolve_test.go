package syncpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munajatapp/munajat-server/internal/domain"
)

func TestResolve_EmptySet(t *testing.T) {
	res := Resolve(123456, nil)
	assert.Equal(t, 0, res.Index)
	assert.Nil(t, res.Matched)

	res = Resolve(0, []domain.SyncPoint{})
	assert.Equal(t, 0, res.Index)
	assert.Nil(t, res.Matched)
}

func TestResolve_IntervalBoundaries(t *testing.T) {
	// Recorded out of index order: section 1's narration starts after
	// section 2's. Valid by design; resolution follows time order.
	points := []domain.SyncPoint{
		{SectionIndex: 0, StartTimeMillis: 0},
		{SectionIndex: 2, StartTimeMillis: 5000},
		{SectionIndex: 1, StartTimeMillis: 9000},
	}

	tests := []struct {
		name string
		time int64
		want int
	}{
		{"just before second point", 4999, 0},
		{"exactly at second point", 5000, 2},
		{"at third point", 9000, 1},
		{"last interval is open-ended", 999999, 1},
		{"interval start is inclusive", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.time, points)
			assert.Equal(t, tt.want, res.Index)
			require.NotNil(t, res.Matched)
			assert.Equal(t, tt.want, res.Matched.SectionIndex)
		})
	}
}

func TestResolve_TimeBeforeFirstPoint(t *testing.T) {
	points := []domain.SyncPoint{
		{SectionIndex: 3, StartTimeMillis: 4000},
		{SectionIndex: 5, StartTimeMillis: 8000},
	}

	res := Resolve(1000, points)
	assert.Equal(t, 3, res.Index)
	require.NotNil(t, res.Matched)
	assert.Equal(t, int64(4000), res.Matched.StartTimeMillis)
}

func TestResolve_IntervalProperty(t *testing.T) {
	points := []domain.SyncPoint{
		{SectionIndex: 0, StartTimeMillis: 0},
		{SectionIndex: 1, StartTimeMillis: 2000},
		{SectionIndex: 2, StartTimeMillis: 4000},
		{SectionIndex: 3, StartTimeMillis: 6000},
	}

	// For every t inside an interval, the opening point's section wins.
	for i := range points[:len(points)-1] {
		for _, offset := range []int64{0, 1, 999, 1999} {
			tm := points[i].StartTimeMillis + offset
			res := Resolve(tm, points)
			assert.Equal(t, points[i].SectionIndex, res.Index, "t=%d", tm)
		}
	}
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	points := []domain.SyncPoint{
		{SectionIndex: 1, StartTimeMillis: 9000},
		{SectionIndex: 0, StartTimeMillis: 0},
	}

	Resolve(5000, points)

	assert.Equal(t, 1, points[0].SectionIndex)
	assert.Equal(t, 0, points[1].SectionIndex)
}

func TestResolve_Idempotent(t *testing.T) {
	points := []domain.SyncPoint{
		{SectionIndex: 0, StartTimeMillis: 100},
		{SectionIndex: 1, StartTimeMillis: 200},
	}

	first := Resolve(150, points)
	second := Resolve(150, points)
	assert.Equal(t, first.Index, second.Index)
	assert.Equal(t, *first.Matched, *second.Matched)
}
