// Package scroll estimates vertical offsets for section indexes so the
// device can be told where to scroll without ever measuring every section.
package scroll

import (
	"sort"
	"sync"
	"time"

	"github.com/munajatapp/munajat-server/internal/domain"
)

// DefaultItemHeight is the assumed section height before any measurement
// has been reported for a prayer.
const DefaultItemHeight = 120.0

// Estimator accumulates measured section heights reported by the device
// and estimates the scroll offset of any section index. Unmeasured
// sections fall back to the running average, or to the default height
// when nothing has been measured yet.
type Estimator struct {
	mu            sync.RWMutex
	prayerID      string
	defaultHeight float64
	heights       map[int]float64
	sum           float64
}

// NewEstimator creates an estimator for one prayer. A non-positive
// defaultHeight falls back to DefaultItemHeight.
func NewEstimator(prayerID string, defaultHeight float64) *Estimator {
	if defaultHeight <= 0 {
		defaultHeight = DefaultItemHeight
	}
	return &Estimator{
		prayerID:      prayerID,
		defaultHeight: defaultHeight,
		heights:       make(map[int]float64),
	}
}

// Measure records the rendered height of one section. Zero and negative
// heights are ignored; re-measuring a section replaces its sample.
func (e *Estimator) Measure(sectionIndex int, height float64) {
	if sectionIndex < 0 || height <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if old, ok := e.heights[sectionIndex]; ok {
		e.sum -= old
	}
	e.heights[sectionIndex] = height
	e.sum += height
}

// Average returns the mean of all measured heights, or the default
// height when no section has been measured.
func (e *Estimator) Average() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.averageLocked()
}

func (e *Estimator) averageLocked() float64 {
	if len(e.heights) == 0 {
		return e.defaultHeight
	}
	return e.sum / float64(len(e.heights))
}

// OffsetFor estimates the offset of the top of the given section: the
// sum of measured heights of all preceding sections, with the average
// filling in for the unmeasured ones.
func (e *Estimator) OffsetFor(sectionIndex int) float64 {
	if sectionIndex <= 0 {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	avg := e.averageLocked()
	offset := 0.0
	for i := range sectionIndex {
		if h, ok := e.heights[i]; ok {
			offset += h
		} else {
			offset += avg
		}
	}
	return offset
}

// Snapshot exports the current measurements for persistence.
func (e *Estimator) Snapshot() domain.ScrollCalibration {
	e.mu.RLock()
	defer e.mu.RUnlock()

	samples := make([]domain.HeightSample, 0, len(e.heights))
	for idx, h := range e.heights {
		samples = append(samples, domain.HeightSample{SectionIndex: idx, Height: h})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].SectionIndex < samples[j].SectionIndex
	})

	return domain.ScrollCalibration{
		PrayerID:      e.prayerID,
		AverageHeight: e.averageLocked(),
		Samples:       samples,
		UpdatedAt:     time.Now(),
	}
}

// Restore seeds the estimator from a persisted calibration. Existing
// measurements are discarded.
func (e *Estimator) Restore(cal domain.ScrollCalibration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.heights = make(map[int]float64, len(cal.Samples))
	e.sum = 0
	for _, s := range cal.Samples {
		if s.SectionIndex < 0 || s.Height <= 0 {
			continue
		}
		e.heights[s.SectionIndex] = s.Height
		e.sum += s.Height
	}
}

// MeasuredCount reports how many sections have a recorded height.
func (e *Estimator) MeasuredCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.heights)
}
