package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poferraz/motion-lite/internal/state"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  *state.Store
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store *state.Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Plan import requires the API key; the read and progress endpoints
		// are open — tsnet handles access when enabled.
		r.With(APIKeyAuth(s.apiKey)).Post("/plan/import", s.handleImportPlan)
		r.Get("/plan/export", s.handleExportPlan)

		r.Get("/sessions", s.handleSessions)

		r.Get("/state", s.handleGetState)
		r.Delete("/state", s.handleClearState)
		r.Put("/state/panel", s.handleSetPanel)
		r.Put("/state/selections", s.handleSetSelections)
		r.Put("/state/cursor", s.handleSetCursor)
		r.Put("/state/checks", s.handleSetCheck)
		r.Put("/state/overrides", s.handleSetOverride)
		r.Put("/state/completion", s.handleSetCompletion)
		r.Put("/state/timers", s.handleUpdateTimers)
	})
}
