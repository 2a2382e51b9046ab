package audio

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/errors"
)

// Player is a virtual audio handle: a monotonic playback clock the server
// keeps in step with the device's player. Position is derived from an
// anchor timestamp rather than ticked, so reads are cheap and drift-free
// between state changes.
//
// While playing, position advances at the configured rate from the anchor;
// pausing re-anchors. The device (or a test) drives it through the Handle
// operations.
type Player struct {
	mu sync.Mutex

	loaded   bool
	playing  bool
	rate     float64
	duration int64

	// basePosition is the position at the moment of anchor.
	basePosition int64
	anchor       time.Time

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewPlayer creates an unloaded player. Load must be called before any
// other operation succeeds.
func NewPlayer() *Player {
	return &Player{rate: 1.0, now: time.Now}
}

// SetClock overrides the player's time source. Test use only.
func (p *Player) SetClock(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
	p.anchor = now()
}

// Load marks the player loaded with the given narration length and resets
// position to the start, paused.
func (p *Player) Load(durationMillis int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaded = true
	p.playing = false
	p.duration = durationMillis
	p.basePosition = 0
	p.anchor = p.now()
}

// Unload resets the player to its initial unloaded state.
func (p *Player) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaded = false
	p.playing = false
	p.duration = 0
	p.basePosition = 0
	p.rate = 1.0
}

// Status implements Handle.
func (p *Player) Status(ctx context.Context) (domain.PlaybackState, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlaybackState{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return domain.PlaybackState{}, nil
	}

	return domain.PlaybackState{
		PositionMillis: p.positionLocked(),
		DurationMillis: p.duration,
		IsLoaded:       true,
		IsPlaying:      p.playing,
	}, nil
}

// Play implements Handle.
func (p *Player) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return errors.AudioNotReady("no audio loaded")
	}
	if p.playing {
		return nil
	}

	p.basePosition = p.positionLocked()
	p.anchor = p.now()
	p.playing = true
	return nil
}

// Pause implements Handle.
func (p *Player) Pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return errors.AudioNotReady("no audio loaded")
	}
	if !p.playing {
		return nil
	}

	p.basePosition = p.positionLocked()
	p.anchor = p.now()
	p.playing = false
	return nil
}

// SetPosition implements Handle. Positions are clamped to [0, duration].
func (p *Player) SetPosition(ctx context.Context, millis int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return errors.AudioNotReady("no audio loaded")
	}

	if millis < 0 {
		millis = 0
	}
	if p.duration > 0 && millis > p.duration {
		millis = p.duration
	}

	p.basePosition = millis
	p.anchor = p.now()
	return nil
}

// PlaybackRates are the rate choices the reading app offers.
var PlaybackRates = []float64{0.75, 1.0, 2.5}

// SetRate implements Handle. Only the rates in PlaybackRates are accepted.
func (p *Player) SetRate(ctx context.Context, rate float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return errors.AudioNotReady("no audio loaded")
	}
	if !slices.Contains(PlaybackRates, rate) {
		return errors.Validationf("playback rate must be one of %v, got %g", PlaybackRates, rate)
	}

	// Re-anchor so elapsed time at the old rate is banked first.
	p.basePosition = p.positionLocked()
	p.anchor = p.now()
	p.rate = rate
	return nil
}

// positionLocked computes the current position. Caller holds p.mu.
func (p *Player) positionLocked() int64 {
	pos := p.basePosition
	if p.playing {
		elapsed := p.now().Sub(p.anchor)
		pos += int64(float64(elapsed.Milliseconds()) * p.rate)
	}

	if p.duration > 0 && pos >= p.duration {
		// Narration ran out; clamp and stop the clock.
		pos = p.duration
		p.basePosition = pos
		p.anchor = p.now()
		p.playing = false
	}
	return pos
}
