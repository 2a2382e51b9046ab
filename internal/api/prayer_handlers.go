package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/munajatapp/munajat-server/internal/http/response"
	"github.com/munajatapp/munajat-server/internal/search"
	"github.com/munajatapp/munajat-server/internal/timefmt"
)

func (s *Server) handleListPrayers(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.prayers.List(), s.logger)
}

func (s *Server) handleGetPrayer(w http.ResponseWriter, r *http.Request) {
	prayer, err := s.prayers.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, prayer, s.logger)
}

func (s *Server) handleGetSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.prayers.Sections(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, sections, s.logger)
}

func (s *Server) handleGetSyncPoints(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.prayers.GetByID(id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	points, err := s.sync.SyncPoints(id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, points, s.logger)
}

// resolveResult is the payload for time resolution queries.
type resolveResult struct {
	PrayerID     string `json:"prayerId"`
	TimeMillis   int64  `json:"timeMillis"`
	TimeDisplay  string `json:"timeDisplay"`
	SectionIndex int    `json:"sectionIndex"`
	Matched      bool   `json:"matched"`
}

func (s *Server) handleResolveTime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.prayers.GetByID(id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	timeMillis, err := strconv.ParseInt(r.URL.Query().Get("time"), 10, 64)
	if err != nil || timeMillis < 0 {
		response.BadRequest(w, "time must be a non-negative millisecond value", s.logger)
		return
	}

	res, err := s.sync.ResolveAt(id, timeMillis)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resolveResult{
		PrayerID:     id,
		TimeMillis:   timeMillis,
		TimeDisplay:  timefmt.Position(timeMillis),
		SectionIndex: res.Index,
		Matched:      res.Matched != nil,
	}, s.logger)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := search.DefaultParams()
	params.Query = r.URL.Query().Get("q")
	params.PrayerID = r.URL.Query().Get("prayer")
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		params.Limit = min(limit, 100)
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		params.Offset = offset
	}

	result, err := s.prayers.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}
