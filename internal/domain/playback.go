package domain

import "time"

// PlaybackState is a point-in-time snapshot of an audio handle.
// The sync engine only reads playback state; it never owns playback.
type PlaybackState struct {
	PositionMillis int64 `json:"position_ms"`
	DurationMillis int64 `json:"duration_ms"`
	IsLoaded       bool  `json:"is_loaded"`
	IsPlaying      bool  `json:"is_playing"`
}

// PlaybackProgress is the last known listening position for a device on a
// prayer, persisted so reopening the prayer resumes where the user left off.
type PlaybackProgress struct {
	DeviceID           string    `json:"device_id"`
	PrayerID           string    `json:"prayer_id"`
	PositionMillis     int64     `json:"position_ms"`
	DurationMillis     int64     `json:"duration_ms"`
	ActiveSectionIndex int       `json:"active_section_index"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProgressID generates the composite progress key: "deviceID:prayerID".
func ProgressID(deviceID, prayerID string) string {
	return deviceID + ":" + prayerID
}
