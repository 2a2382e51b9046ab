package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name   string
		millis int64
		want   string
	}{
		{"zero", 0, "0:00"},
		{"negative", -500, "0:00"},
		{"sub-second", 400, "0:00.4"},
		{"seconds", 5300, "0:05.3"},
		{"minute boundary", 60000, "1:00.0"},
		{"padded seconds", 61000, "1:01.0"},
		{"long", 754_900, "12:34.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Position(tt.millis))
		})
	}
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00", Clock(0))
	assert.Equal(t, "0:05", Clock(5999))
	assert.Equal(t, "2:30", Clock(150_000))
}
