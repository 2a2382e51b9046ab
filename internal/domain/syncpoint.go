package domain

import (
	"slices"
)

// SyncPoint records that a section's narration begins at a given audio time.
// The text snapshots freeze the section wording at record time so a stale
// timestamp file can be detected after the prayer text is re-edited.
//
// The JSON field names match the on-disk timestamp file format consumed by
// the mobile client: {sectionIndex, startTime, arabic, persian}.
type SyncPoint struct {
	SectionIndex    int    `json:"sectionIndex"`
	StartTimeMillis int64  `json:"startTime"`
	Arabic          string `json:"arabic"`
	Persian         string `json:"persian"`
}

// SortSyncPointsByIndex sorts points ascending by section index, the order
// the persisted file is kept in.
func SortSyncPointsByIndex(points []SyncPoint) {
	slices.SortFunc(points, func(a, b SyncPoint) int {
		return a.SectionIndex - b.SectionIndex
	})
}

// SyncPointsSortedByTime returns a copy of points sorted ascending by start
// time. Points may be recorded out of narration order, so time order and
// index order can diverge; interval resolution always uses time order.
func SyncPointsSortedByTime(points []SyncPoint) []SyncPoint {
	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b SyncPoint) int {
		switch {
		case a.StartTimeMillis < b.StartTimeMillis:
			return -1
		case a.StartTimeMillis > b.StartTimeMillis:
			return 1
		default:
			return 0
		}
	})
	return sorted
}
