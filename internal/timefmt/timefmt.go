// Package timefmt formats playback positions for display.
package timefmt

import "fmt"

// Position formats a playback position in milliseconds as "m:ss.t",
// where t is tenths of a second. Zero and negative positions format as "0:00".
func Position(millis int64) string {
	if millis <= 0 {
		return "0:00"
	}

	minutes := millis / 60000
	seconds := (millis % 60000) / 1000
	tenths := (millis % 1000) / 100

	return fmt.Sprintf("%d:%02d.%d", minutes, seconds, tenths)
}

// Clock formats a playback position as "m:ss", without tenths.
// Used where the coarser display is enough (progress readouts).
func Clock(millis int64) string {
	if millis <= 0 {
		return "0:00"
	}

	minutes := millis / 60000
	seconds := (millis % 60000) / 1000

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
