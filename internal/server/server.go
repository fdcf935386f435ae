// Package server provides the local HTTP control surface for the Cronos
// engagement tracking agent.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mhaile-revolts/cronosFacial/internal/analysis"
	"github.com/mhaile-revolts/cronosFacial/internal/capture"
	"github.com/mhaile-revolts/cronosFacial/internal/server/api"
	"github.com/mhaile-revolts/cronosFacial/internal/store"
)

// Controller bundles the application surfaces the server exposes over HTTP.
type Controller interface {
	api.SessionController
	api.InteractionRecorder
}

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller Controller
	Camera     capture.Camera
	Estimator  *analysis.EngagementEstimator
	Socket     *EngagementSocket
}

// Server represents the HTTP server for the Cronos application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessionsHandler := api.NewSessionsHandler(s.config.Store, s.config.Controller)
		s.mux.Handle("/api/sessions", sessionsHandler)
		s.mux.Handle("/api/sessions/", sessionsHandler)

		if s.config.Controller != nil {
			s.mux.Handle("/api/interactions", api.NewInteractionsHandler(s.config.Store, s.config.Controller))
		}
	}

	estimator := s.config.Estimator
	if estimator == nil {
		estimator = analysis.NewEngagementEstimator()
	}
	s.mux.Handle("/api/engagement/metrics", api.NewEngagementHandler(estimator))

	// Live per-frame record broadcast
	if s.config.Socket != nil {
		s.mux.Handle("/api/engagement", s.config.Socket)
	}

	// Camera preview
	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	if s.config.Controller != nil {
		response["active_session"] = s.config.Controller.ActiveSessionID()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
