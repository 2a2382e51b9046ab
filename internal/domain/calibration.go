package domain

import "time"

// HeightSample is one measured rendered height for a section.
type HeightSample struct {
	SectionIndex int     `json:"section_index"`
	Height       float64 `json:"height"`
}

// ScrollCalibration is the persisted per-prayer scroll profile: measured
// section heights and their running average. Exact pixel offsets are not
// known in advance on a virtualized list, so scroll targets are estimated
// from these measurements and refined as more sections render.
type ScrollCalibration struct {
	PrayerID      string         `json:"prayer_id"`
	AverageHeight float64        `json:"average_height"`
	Samples       []HeightSample `json:"samples,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
