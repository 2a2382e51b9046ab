// Package api provides the HTTP API server and handlers for the sync engine.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/munajatapp/munajat-server/internal/ratelimit"
	"github.com/munajatapp/munajat-server/internal/service"
	"github.com/munajatapp/munajat-server/internal/session"
	"github.com/munajatapp/munajat-server/internal/sse"
	"github.com/munajatapp/munajat-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	prayers    *service.PrayerService
	sync       *service.SyncService
	sessions   *session.Manager
	sseHandler *sse.Handler
	validator  *validation.Validator
	// recordLimiter throttles record taps per session so a double tap
	// cannot write two points milliseconds apart.
	recordLimiter *ratelimit.KeyedLimiter
	router        *chi.Mux
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(prayers *service.PrayerService, syncService *service.SyncService, sessions *session.Manager, sseHandler *sse.Handler, logger *slog.Logger) *Server {
	s := &Server{
		prayers:       prayers,
		sync:          syncService,
		sessions:      sessions,
		sseHandler:    sseHandler,
		validator:     validation.New(),
		recordLimiter: ratelimit.New(2, 1),
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The reading app runs on phones on the same LAN; origins are not
	// predictable, so the API stays open at the CORS layer.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Event stream for active-section pushes.
		r.Get("/events", s.sseHandler.ServeHTTP)

		r.Route("/prayers", func(r chi.Router) {
			r.Get("/", s.handleListPrayers)
			r.Get("/{id}", s.handleGetPrayer)
			r.Get("/{id}/sections", s.handleGetSections)
			r.Get("/{id}/syncpoints", s.handleGetSyncPoints)
			r.Get("/{id}/resolve", s.handleResolveTime)
		})

		r.Get("/search", s.handleSearch)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleCloseSession)
				r.Post("/mode", s.handleSetMode)
				r.Post("/record", s.handleRecordSection)
				r.Post("/play-section", s.handlePlaySection)
				r.Post("/scroll", s.handleUserScrolled)
				r.Post("/measure", s.handleMeasureSection)
				r.Post("/playback", s.handlePlaybackControl)
			})
		})
	})
}
