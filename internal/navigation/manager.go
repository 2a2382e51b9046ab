// Package navigation arbitrates between audio-driven auto-scroll and
// user-driven navigation so the two never fight each other.
package navigation

import (
	"sync"
	"time"
)

// Action identifies the most recent user-originated navigation action.
type Action string

// Navigation actions.
const (
	ActionNone       Action = "none"
	ActionTextScroll Action = "text_scroll"
	ActionAudioSeek  Action = "audio_seek"
)

// Manager suppresses auto-scroll during two transient windows: while the
// user is scrolling the text, and just after a tap-to-seek, when the next
// tracker tick would still observe the pre-seek audio position.
//
// The two flags are independent; both can be set at once. Each window is
// self-clearing and self-replacing - a repeated call restarts its own timer
// instead of stacking expirations, so calling at scroll-frame frequency is
// safe.
type Manager struct {
	mu sync.Mutex

	userScrolling bool
	audioSeeking  bool
	lastAction    Action

	// Timer.Stop cannot cancel a callback that has already fired and is
	// waiting on mu, so each callback captures the generation current at
	// arming time and only clears its flag while still current. A stale
	// callback must never close a freshly opened window.
	scrollGen uint64
	seekGen   uint64

	scrollCooldown time.Duration
	seekCooldown   time.Duration

	scrollTimer *time.Timer
	seekTimer   *time.Timer
}

// Reference cooldowns: a manual scroll holds auto-scroll off noticeably
// longer than the brief post-seek window.
const (
	DefaultScrollCooldown = 1500 * time.Millisecond
	DefaultSeekCooldown   = 500 * time.Millisecond
)

// NewManager creates a manager with the given cooldown windows.
// Non-positive durations fall back to the defaults.
func NewManager(scrollCooldown, seekCooldown time.Duration) *Manager {
	if scrollCooldown <= 0 {
		scrollCooldown = DefaultScrollCooldown
	}
	if seekCooldown <= 0 {
		seekCooldown = DefaultSeekCooldown
	}
	return &Manager{
		lastAction:     ActionNone,
		scrollCooldown: scrollCooldown,
		seekCooldown:   seekCooldown,
	}
}

// UserScrolled marks a user-originated text scroll and (re)starts the
// scroll cooldown.
func (m *Manager) UserScrolled() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.userScrolling = true
	m.lastAction = ActionTextScroll
	m.scrollGen++
	gen := m.scrollGen

	if m.scrollTimer != nil {
		m.scrollTimer.Stop()
	}
	m.scrollTimer = time.AfterFunc(m.scrollCooldown, func() {
		m.mu.Lock()
		if m.scrollGen == gen {
			m.userScrolling = false
		}
		m.mu.Unlock()
	})
}

// AudioSeekStarted marks a tap-to-seek and (re)starts the seek cooldown.
// Callers must invoke this before issuing the seek to the audio handle.
func (m *Manager) AudioSeekStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.audioSeeking = true
	m.lastAction = ActionAudioSeek
	m.seekGen++
	gen := m.seekGen

	if m.seekTimer != nil {
		m.seekTimer.Stop()
	}
	m.seekTimer = time.AfterFunc(m.seekCooldown, func() {
		m.mu.Lock()
		if m.seekGen == gen {
			m.audioSeeking = false
		}
		m.mu.Unlock()
	})
}

// CanAutoScroll reports whether an audio-driven scroll may execute now.
// True only when neither suppression window is open.
func (m *Manager) CanAutoScroll() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.userScrolling && !m.audioSeeking
}

// LastAction returns the most recent user-originated action.
func (m *Manager) LastAction() Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAction
}

// State returns both suppression flags, mainly for session status output.
func (m *Manager) State() (userScrolling, audioSeeking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userScrolling, m.audioSeeking
}

// Stop cancels any pending cooldown timers and clears both flags.
// Called when the owning session closes; the manager remains usable.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.scrollTimer != nil {
		m.scrollTimer.Stop()
		m.scrollTimer = nil
	}
	if m.seekTimer != nil {
		m.seekTimer.Stop()
		m.seekTimer = nil
	}
	// Invalidate any callback still in flight.
	m.scrollGen++
	m.seekGen++
	m.userScrolling = false
	m.audioSeeking = false
	m.lastAction = ActionNone
}
