// Package tracker polls an audio handle's playback position at a fixed
// cadence and proposes active-section changes to its owner.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/munajatapp/munajat-server/internal/audio"
	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
)

// Options configures a tracker.
type Options struct {
	// Handle is the audio collaborator polled each tick.
	Handle audio.Handle
	// SyncPoints returns the live sync-point set. It is called at tick
	// time, never captured, so points recorded mid-playback take effect
	// on the next tick.
	SyncPoints func() []domain.SyncPoint
	// ActiveIndex returns the currently displayed section index; a tick
	// only proposes when the resolved index differs from it.
	ActiveIndex func() int
	// Propose delivers a new resolved index to the owner. The owner
	// decides whether the resulting scroll actually executes.
	Propose func(res syncpoint.Resolution)
	// Interval is the polling cadence. Non-positive falls back to 500ms.
	Interval time.Duration
	// Logger for skipped ticks. Nil discards.
	Logger *slog.Logger
}

// DefaultInterval is the polling cadence when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Tracker owns at most one live periodic polling loop. Starting while a
// loop is live cancels the old one first; stopping twice is a no-op.
type Tracker struct {
	opts Options

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped tracker.
func New(opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{opts: opts}
}

// Start begins the polling loop. Any previous loop is stopped first, so a
// stale loop can never keep feeding proposals from an earlier prayer.
func (t *Tracker) Start(ctx context.Context) {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(runCtx, done)
}

// Stop cancels the polling loop and waits for it to exit. Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a polling loop is live.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// tick performs one poll-resolve-propose pass. Failures are logged and
// skipped; the next periodic tick is the retry.
func (t *Tracker) tick(ctx context.Context) {
	state, err := t.opts.Handle.Status(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.opts.Logger.Debug("tracker tick skipped", "error", err)
		}
		return
	}
	if !state.IsLoaded {
		return
	}

	res := syncpoint.Resolve(state.PositionMillis, t.opts.SyncPoints())
	if res.Index == t.opts.ActiveIndex() {
		return
	}

	t.opts.Propose(res)
}
