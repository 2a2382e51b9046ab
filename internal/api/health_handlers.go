package api

import (
	"net/http"
	"time"

	"github.com/munajatapp/munajat-server/internal/http/response"
)

// healthStatus is the health check payload.
type healthStatus struct {
	Status     string    `json:"status"`
	Prayers    int       `json:"prayers"`
	Sessions   int       `json:"sessions"`
	ServerTime time.Time `json:"serverTime"`
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, healthStatus{
		Status:     "healthy",
		Prayers:    len(s.prayers.List()),
		Sessions:   s.sessions.Count(),
		ServerTime: time.Now(),
	}, s.logger)
}
