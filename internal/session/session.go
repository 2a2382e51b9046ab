// Package session ties the sync engine together for one device reading
// one prayer: playback, sync-point recording, position tracking,
// auto-scroll arbitration and mode switching.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/munajatapp/munajat-server/internal/audio"
	"github.com/munajatapp/munajat-server/internal/domain"
	apperrors "github.com/munajatapp/munajat-server/internal/errors"
	"github.com/munajatapp/munajat-server/internal/navigation"
	"github.com/munajatapp/munajat-server/internal/scroll"
	"github.com/munajatapp/munajat-server/internal/sse"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
	"github.com/munajatapp/munajat-server/internal/tracker"
)

// Mode is the session's operating mode.
type Mode string

const (
	// ModeRecord is the authoring mode: taps record sync points, the
	// tracker stays off.
	ModeRecord Mode = "record"
	// ModeSync is the reading mode: the tracker follows playback and
	// proposes auto-scrolls.
	ModeSync Mode = "sync"
)

// ProgressSaver persists playback positions across sessions.
type ProgressSaver interface {
	UpsertProgress(p domain.PlaybackProgress) error
	SaveCalibration(cal domain.ScrollCalibration) error
}

// Session is the live sync state for one device reading one prayer.
type Session struct {
	ID       string
	DeviceID string
	Prayer   domain.Prayer

	player    *audio.Player
	store     *syncpoint.Store
	nav       *navigation.Manager
	tracker   *tracker.Tracker
	estimator *scroll.Estimator
	events    *sse.Manager
	progress  ProgressSaver
	logger    *slog.Logger

	mu          sync.RWMutex
	sections    []domain.Section
	points      []domain.SyncPoint
	activeIndex int
	mode        Mode
	closed      bool
}

// Status is a snapshot of the session for clients.
type Status struct {
	SessionID    string               `json:"sessionId"`
	PrayerID     string               `json:"prayerId"`
	Mode         Mode                 `json:"mode"`
	ActiveIndex  int                  `json:"activeSectionIndex"`
	Sections     int                  `json:"sections"`
	SyncPoints   int                  `json:"syncPoints"`
	Playback     domain.PlaybackState `json:"playback"`
	ScrollOffset float64              `json:"scrollOffset"`
}

// Points returns the live sync-point set.
func (s *Session) Points() []domain.SyncPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncPoint, len(s.points))
	copy(out, s.points)
	return out
}

// ActiveIndex returns the currently displayed section index.
func (s *Session) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeIndex
}

// CurrentMode returns the session's operating mode.
func (s *Session) CurrentMode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Sections returns the segmented prayer text.
func (s *Session) Sections() []domain.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sections
}

// Player exposes the playback handle for transport endpoints.
func (s *Session) Player() audio.Handle {
	return s.player
}

// Estimator exposes the scroll estimator for measurement endpoints.
func (s *Session) Estimator() *scroll.Estimator {
	return s.estimator
}

// Status reports the session snapshot.
func (s *Session) Status(ctx context.Context) (Status, error) {
	state, err := s.player.Status(ctx)
	if err != nil {
		return Status{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		SessionID:    s.ID,
		PrayerID:     s.Prayer.ID,
		Mode:         s.mode,
		ActiveIndex:  s.activeIndex,
		Sections:     len(s.sections),
		SyncPoints:   len(s.points),
		Playback:     state,
		ScrollOffset: s.estimator.OffsetFor(s.activeIndex),
	}, nil
}

// RecordSection captures the current playback position as the sync point
// for the given section. Only valid in record mode. Recording the same
// section again replaces its point.
func (s *Session) RecordSection(ctx context.Context, sectionIndex int) (domain.SyncPoint, error) {
	s.mu.RLock()
	mode := s.mode
	sectionCount := len(s.sections)
	s.mu.RUnlock()

	if mode != ModeRecord {
		return domain.SyncPoint{}, apperrors.Conflict("recording requires record mode")
	}
	if sectionIndex < 0 || sectionIndex >= sectionCount {
		return domain.SyncPoint{}, apperrors.SectionNotFoundf("section %d out of range (0-%d)", sectionIndex, sectionCount-1)
	}

	state, err := s.player.Status(ctx)
	if err != nil {
		return domain.SyncPoint{}, err
	}
	if !state.IsLoaded {
		return domain.SyncPoint{}, apperrors.AudioNotReady("cannot record before audio is loaded")
	}

	s.mu.RLock()
	section := s.sections[sectionIndex]
	s.mu.RUnlock()

	if err := s.store.Upsert(s.Prayer.ID, sectionIndex, state.PositionMillis, section.Arabic, section.Persian); err != nil {
		return domain.SyncPoint{}, err
	}

	point := domain.SyncPoint{
		SectionIndex:    sectionIndex,
		StartTimeMillis: state.PositionMillis,
		Arabic:          section.Arabic,
		Persian:         section.Persian,
	}

	s.mu.Lock()
	replaced := false
	for i := range s.points {
		if s.points[i].SectionIndex == sectionIndex {
			s.points[i] = point
			replaced = true
			break
		}
	}
	if !replaced {
		s.points = append(s.points, point)
		domain.SortSyncPointsByIndex(s.points)
	}
	total := len(s.points)
	s.mu.Unlock()

	s.events.Emit(sse.NewPointRecordedEvent(sse.PointRecordedData{
		SessionID: s.ID,
		PrayerID:  s.Prayer.ID,
		Point:     point,
		Replaced:  replaced,
		Total:     total,
	}))

	s.logger.Info("sync point recorded",
		"prayer", s.Prayer.ID,
		"section", sectionIndex,
		"position_ms", state.PositionMillis,
		"replaced", replaced)

	return point, nil
}

// PlaySection seeks playback to the sync point recorded for the given
// section and starts playing. A section without a recorded point is
// reported informationally, not as a failure.
func (s *Session) PlaySection(ctx context.Context, sectionIndex int) (domain.SyncPoint, error) {
	s.mu.RLock()
	sectionCount := len(s.sections)
	var point *domain.SyncPoint
	for i := range s.points {
		if s.points[i].SectionIndex == sectionIndex {
			p := s.points[i]
			point = &p
			break
		}
	}
	s.mu.RUnlock()

	if sectionIndex < 0 || sectionIndex >= sectionCount {
		return domain.SyncPoint{}, apperrors.SectionNotFoundf("section %d out of range (0-%d)", sectionIndex, sectionCount-1)
	}
	if point == nil {
		return domain.SyncPoint{}, apperrors.SyncPointNotFoundf("no sync point recorded for section %d", sectionIndex)
	}

	// The seek window must open before the position changes, otherwise
	// a tracker tick between the two could observe the pre-seek
	// position and scroll the text backwards.
	s.nav.AudioSeekStarted()

	if err := s.player.SetPosition(ctx, point.StartTimeMillis); err != nil {
		return domain.SyncPoint{}, err
	}
	if err := s.player.Play(ctx); err != nil {
		return domain.SyncPoint{}, err
	}

	s.mu.Lock()
	s.activeIndex = sectionIndex
	offset := s.estimator.OffsetFor(sectionIndex)
	s.mu.Unlock()

	// The tap sets the active index directly, so the tracker will see
	// nothing to propose; connected displays still need the scroll push.
	s.events.Emit(sse.NewActiveSectionEvent(sse.ActiveSectionData{
		SessionID:      s.ID,
		PrayerID:       s.Prayer.ID,
		SectionIndex:   sectionIndex,
		PositionMillis: point.StartTimeMillis,
		ScrollOffset:   offset,
	}))

	return *point, nil
}

// UserScrolled records a manual scroll to a section: the displayed index
// follows the user and auto-scroll is suppressed for the cooldown.
func (s *Session) UserScrolled(sectionIndex int) {
	s.nav.UserScrolled()

	s.mu.Lock()
	if sectionIndex >= 0 && sectionIndex < len(s.sections) {
		s.activeIndex = sectionIndex
	}
	s.mu.Unlock()
}

// SetMode switches between record and sync mode. Entering sync mode
// starts the tracker; leaving it stops it.
func (s *Session) SetMode(ctx context.Context, mode Mode) error {
	if mode != ModeRecord && mode != ModeSync {
		return apperrors.Validationf("unknown mode %q", mode)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.Conflict("session is closed")
	}
	if s.mode == mode {
		s.mu.Unlock()
		return nil
	}
	s.mode = mode
	s.mu.Unlock()

	switch mode {
	case ModeSync:
		s.tracker.Start(ctx)
	case ModeRecord:
		s.tracker.Stop()
	}

	s.events.Emit(sse.NewModeChangedEvent(sse.ModeChangedData{
		SessionID: s.ID,
		PrayerID:  s.Prayer.ID,
		Mode:      string(mode),
	}))

	s.logger.Info("session mode changed", "session", s.ID, "mode", mode)
	return nil
}

// applyProposal handles a tracker proposal: when auto-scroll is allowed
// the displayed index follows playback and clients are notified.
func (s *Session) applyProposal(res syncpoint.Resolution) {
	if !s.nav.CanAutoScroll() {
		return
	}

	s.mu.Lock()
	if s.closed || s.activeIndex == res.Index {
		s.mu.Unlock()
		return
	}
	s.activeIndex = res.Index
	offset := s.estimator.OffsetFor(res.Index)
	s.mu.Unlock()

	var position int64
	if res.Matched != nil {
		position = res.Matched.StartTimeMillis
	}

	s.events.Emit(sse.NewActiveSectionEvent(sse.ActiveSectionData{
		SessionID:      s.ID,
		PrayerID:       s.Prayer.ID,
		SectionIndex:   res.Index,
		PositionMillis: position,
		ScrollOffset:   offset,
	}))
}

// Close stops the tracker and navigation timers and persists the
// session's calibration and playback progress. Idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	activeIndex := s.activeIndex
	s.mu.Unlock()

	s.tracker.Stop()
	s.nav.Stop()

	state, err := s.player.Status(ctx)
	if err == nil && state.IsLoaded && s.progress != nil {
		if saveErr := s.progress.UpsertProgress(domain.PlaybackProgress{
			DeviceID:           s.DeviceID,
			PrayerID:           s.Prayer.ID,
			PositionMillis:     state.PositionMillis,
			DurationMillis:     state.DurationMillis,
			ActiveSectionIndex: activeIndex,
			UpdatedAt:          time.Now(),
		}); saveErr != nil {
			s.logger.Warn("failed to save playback progress", "session", s.ID, "error", saveErr)
		}
	}

	if s.progress != nil && s.estimator.MeasuredCount() > 0 {
		if saveErr := s.progress.SaveCalibration(s.estimator.Snapshot()); saveErr != nil {
			s.logger.Warn("failed to save scroll calibration", "session", s.ID, "error", saveErr)
		}
	}

	s.player.Unload()
	s.logger.Info("session closed", "session", s.ID, "prayer", s.Prayer.ID)
	return nil
}
