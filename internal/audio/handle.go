// Package audio defines the audio-handle collaborator contract and a
// server-side virtual player that mirrors the device's playback clock.
package audio

import (
	"context"

	"github.com/munajatapp/munajat-server/internal/domain"
)

// Handle is the external audio collaborator consumed by the sync engine.
// All operations are asynchronous against a real device player and may
// fail; callers treat failures as non-fatal and do not retry automatically.
type Handle interface {
	// Status reports the current playback snapshot.
	Status(ctx context.Context) (domain.PlaybackState, error)
	// Play starts or resumes playback.
	Play(ctx context.Context) error
	// Pause pauses playback, keeping the current position.
	Pause(ctx context.Context) error
	// SetPosition seeks to an absolute position in milliseconds.
	SetPosition(ctx context.Context, millis int64) error
	// SetRate changes the playback speed multiplier.
	SetRate(ctx context.Context, rate float64) error
}
