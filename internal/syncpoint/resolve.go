package syncpoint

import (
	"github.com/munajatapp/munajat-server/internal/domain"
)

// Resolution is the outcome of mapping a playback time to a section.
type Resolution struct {
	// Index is the active section index, 0 when no sync points exist.
	Index int
	// Matched is the sync point whose interval contains the time, nil in
	// the degenerate empty-set case.
	Matched *domain.SyncPoint
}

// Resolve maps a playback position to the section whose narration interval
// contains it.
//
// Consecutive sync points in temporal order partition the timeline into
// intervals; each interval belongs to the section whose point opens it, and
// the last interval is open-ended. Points recorded out of narration order
// are handled by sorting a copy by start time - the input is never mutated.
// An empty or nil set resolves to section 0 with no matched point.
//
// Resolve is pure and deterministic: identical inputs always produce
// identical output.
func Resolve(currentTimeMillis int64, points []domain.SyncPoint) Resolution {
	if len(points) == 0 {
		return Resolution{Index: 0}
	}

	sorted := domain.SyncPointsSortedByTime(points)

	for i := range sorted {
		if currentTimeMillis < sorted[i].StartTimeMillis {
			continue
		}
		if i == len(sorted)-1 || currentTimeMillis < sorted[i+1].StartTimeMillis {
			return Resolution{Index: sorted[i].SectionIndex, Matched: &sorted[i]}
		}
	}

	// Time precedes every recorded point; fall back to the earliest one.
	return Resolution{Index: sorted[0].SectionIndex, Matched: &sorted[0]}
}
