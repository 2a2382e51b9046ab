package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/munajatapp/munajat-server/internal/errors"
	"github.com/munajatapp/munajat-server/internal/http/response"
	"github.com/munajatapp/munajat-server/internal/session"
	"github.com/munajatapp/munajat-server/internal/timefmt"
)

type createSessionRequest struct {
	DeviceID string `json:"deviceId" validate:"required"`
	PrayerID string `json:"prayerId" validate:"required"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess, err := s.sessions.Create(r.Context(), req.DeviceID, req.PrayerID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	status, err := sess.Status(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, status, s.logger)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	status, err := sess.Status(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, status, s.logger)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if err := s.sessions.Close(r.Context(), sessionID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.recordLimiter.Forget(sessionID)
	response.NoContent(w)
}

type setModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=record sync"`
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sessionID := chi.URLParam(r, "id")
	if err := s.sessions.SetMode(sessionID, session.Mode(req.Mode)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]string{"mode": req.Mode}, s.logger)
}

type recordSectionRequest struct {
	SectionIndex int `json:"sectionIndex" validate:"gte=0"`
}

// recordedPoint augments the stored point with a human-readable time for
// the authoring screen.
type recordedPoint struct {
	PrayerID     string `json:"prayerId"`
	SectionIndex int    `json:"sectionIndex"`
	StartTime    int64  `json:"startTime"`
	TimeDisplay  string `json:"timeDisplay"`
}

func (s *Server) handleRecordSection(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if !s.recordLimiter.Allow(sessionID) {
		response.HandleError(w, apperrors.Conflict("recording too fast, ignoring duplicate tap"), s.logger)
		return
	}

	var req recordSectionRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	point, err := sess.RecordSection(r.Context(), req.SectionIndex)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, recordedPoint{
		PrayerID:     sess.Prayer.ID,
		SectionIndex: point.SectionIndex,
		StartTime:    point.StartTimeMillis,
		TimeDisplay:  timefmt.Position(point.StartTimeMillis),
	}, s.logger)
}

type playSectionRequest struct {
	SectionIndex int `json:"sectionIndex" validate:"gte=0"`
}

func (s *Server) handlePlaySection(w http.ResponseWriter, r *http.Request) {
	var req playSectionRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	point, err := sess.PlaySection(r.Context(), req.SectionIndex)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, point, s.logger)
}

type userScrolledRequest struct {
	SectionIndex int `json:"sectionIndex" validate:"gte=0"`
}

func (s *Server) handleUserScrolled(w http.ResponseWriter, r *http.Request) {
	var req userScrolledRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess.UserScrolled(req.SectionIndex)
	response.NoContent(w)
}

type measureSectionRequest struct {
	SectionIndex int     `json:"sectionIndex" validate:"gte=0"`
	Height       float64 `json:"height" validate:"gt=0"`
}

func (s *Server) handleMeasureSection(w http.ResponseWriter, r *http.Request) {
	var req measureSectionRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess.Estimator().Measure(req.SectionIndex, req.Height)
	response.NoContent(w)
}

type playbackControlRequest struct {
	Action         string  `json:"action" validate:"required,oneof=play pause seek rate"`
	PositionMillis int64   `json:"positionMillis" validate:"gte=0"`
	Rate           float64 `json:"rate"`
}

func (s *Server) handlePlaybackControl(w http.ResponseWriter, r *http.Request) {
	var req playbackControlRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	player := sess.Player()
	switch req.Action {
	case "play":
		err = player.Play(r.Context())
	case "pause":
		err = player.Pause(r.Context())
	case "seek":
		err = player.SetPosition(r.Context(), req.PositionMillis)
	case "rate":
		err = player.SetRate(r.Context(), req.Rate)
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	state, err := player.Status(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, state, s.logger)
}
