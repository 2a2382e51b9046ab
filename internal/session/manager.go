package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/munajatapp/munajat-server/internal/audio"
	"github.com/munajatapp/munajat-server/internal/config"
	"github.com/munajatapp/munajat-server/internal/domain"
	apperrors "github.com/munajatapp/munajat-server/internal/errors"
	"github.com/munajatapp/munajat-server/internal/id"
	"github.com/munajatapp/munajat-server/internal/navigation"
	"github.com/munajatapp/munajat-server/internal/scroll"
	"github.com/munajatapp/munajat-server/internal/sse"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
	"github.com/munajatapp/munajat-server/internal/tracker"
)

// fallbackDurationMillis is used when prayer metadata carries no
// narration length. Position clamping then only kicks in at this bound.
const fallbackDurationMillis = int64(3_600_000)

// PrayerSource supplies prayer metadata and segmented content.
type PrayerSource interface {
	GetByID(id string) (domain.Prayer, error)
	Sections(id string) ([]domain.Section, error)
}

// StateStore persists per-device state across sessions.
type StateStore interface {
	ProgressSaver
	GetCalibration(prayerID string) (domain.ScrollCalibration, error)
	GetProgress(deviceID, prayerID string) (domain.PlaybackProgress, error)
}

// Manager owns the live sessions.
type Manager struct {
	source     PrayerSource
	syncPoints *syncpoint.Store
	state      StateStore
	events     *sse.Manager
	cfg        config.SyncConfig
	logger     *slog.Logger

	// baseCtx outlives any single request; trackers run on it.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerOptions configures a session manager.
type ManagerOptions struct {
	Source     PrayerSource
	SyncPoints *syncpoint.Store
	State      StateStore // optional; nil disables persistence
	Events     *sse.Manager
	Config     config.SyncConfig
	Logger     *slog.Logger
}

// NewManager creates a session manager.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		source:     opts.Source,
		syncPoints: opts.SyncPoints,
		state:      opts.State,
		events:     opts.Events,
		cfg:        opts.Config,
		logger:     logger,
		baseCtx:    ctx,
		cancel:     cancel,
		sessions:   make(map[string]*Session),
	}
}

// Create opens a session for a device on a prayer: loads the content,
// the recorded sync points, any saved calibration, and restores the
// device's last playback position. Sessions with recorded points start
// in sync mode, bare prayers in record mode.
func (m *Manager) Create(ctx context.Context, deviceID, prayerID string) (*Session, error) {
	prayer, err := m.source.GetByID(prayerID)
	if err != nil {
		return nil, err
	}
	sections, err := m.source.Sections(prayerID)
	if err != nil {
		return nil, err
	}
	points, err := m.syncPoints.Load(prayerID)
	if err != nil {
		return nil, err
	}

	sessionID, err := id.Generate("ses")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "generate session id")
	}

	player := audio.NewPlayer()
	duration := prayer.DurationMillis
	if duration <= 0 {
		duration = fallbackDurationMillis
	}
	player.Load(duration)

	estimator := scroll.NewEstimator(prayerID, m.cfg.DefaultItemHeight)
	activeIndex := 0
	if m.state != nil {
		if cal, calErr := m.state.GetCalibration(prayerID); calErr == nil {
			estimator.Restore(cal)
		} else if !errors.Is(calErr, apperrors.ErrNotFound) {
			m.logger.Warn("failed to load calibration", "prayer", prayerID, "error", calErr)
		}
		if prog, progErr := m.state.GetProgress(deviceID, prayerID); progErr == nil {
			if posErr := player.SetPosition(ctx, prog.PositionMillis); posErr == nil {
				activeIndex = prog.ActiveSectionIndex
			}
		}
	}

	s := &Session{
		ID:        sessionID,
		DeviceID:  deviceID,
		Prayer:    prayer,
		player:    player,
		store:     m.syncPoints,
		nav:       navigation.NewManager(m.cfg.ScrollCooldown, m.cfg.SeekCooldown),
		estimator: estimator,
		events:    m.events,
		progress:  m.state,
		logger:    m.logger,
		sections:  sections,
		points:    points,
	}
	s.activeIndex = clampIndex(activeIndex, len(sections))

	s.tracker = tracker.New(tracker.Options{
		Handle:      player,
		SyncPoints:  s.Points,
		ActiveIndex: s.ActiveIndex,
		Propose:     s.applyProposal,
		Interval:    m.cfg.TrackerInterval,
		Logger:      m.logger,
	})

	if len(points) > 0 {
		s.mode = ModeSync
		s.tracker.Start(m.baseCtx)
	} else {
		s.mode = ModeRecord
	}

	m.mu.Lock()
	m.sessions[sessionID] = s
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		"session", sessionID,
		"device", deviceID,
		"prayer", prayerID,
		"mode", s.mode,
		"sections", len(sections),
		"sync_points", len(points),
		"total_sessions", total)

	return s, nil
}

// Get looks up a live session.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, apperrors.NotFoundf("session %s not found", sessionID)
	}
	return s, nil
}

// SetMode switches a session's mode, running the tracker on the
// manager's long-lived context rather than the request's.
func (m *Manager) SetMode(sessionID string, mode Mode) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	return s.SetMode(m.baseCtx, mode)
}

// Close ends a session and removes it from the registry.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return apperrors.NotFoundf("session %s not found", sessionID)
	}
	return s.Close(ctx)
}

// CloseAll ends every session. Called at server shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Close(ctx); err != nil {
			m.logger.Warn("failed to close session", "session", s.ID, "error", err)
		}
	}
	m.cancel()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func clampIndex(idx, count int) int {
	if idx < 0 || count == 0 {
		return 0
	}
	if idx >= count {
		return count - 1
	}
	return idx
}
