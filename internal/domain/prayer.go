package domain

// Prayer describes one catalog entry: a narrated prayer with its bilingual
// text and audio asset.
type Prayer struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ContentPath string `json:"-"`
	AudioPath   string `json:"-"`
	// DurationMillis is the narration length, if known. Zero when the
	// catalog has no duration metadata for the audio asset.
	DurationMillis int64 `json:"duration_ms,omitempty"`
}
