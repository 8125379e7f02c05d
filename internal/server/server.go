// Package server provides the HTTP API for the fretcoach practice loop.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avashisht/fretcoach/internal/capture"
	"github.com/avashisht/fretcoach/internal/chord"
	"github.com/avashisht/fretcoach/internal/pipeline"
	"github.com/avashisht/fretcoach/internal/server/api"
	"github.com/avashisht/fretcoach/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir    string
	Store        *store.Store
	Camera       capture.Camera
	Orchestrator *pipeline.Orchestrator
	Catalog      *chord.Catalog
}

// Server represents the HTTP server for the fretcoach application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Catalog == nil {
		config.Catalog = chord.NewCatalog()
	}
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

	chordHandler := api.NewChordHandler(s.config.Catalog)
	s.mux.Handle("/api/chords", chordHandler)
	s.mux.Handle("/api/chords/", chordHandler)

	if s.config.Orchestrator != nil {
		targetHandler := api.NewTargetHandler(s.config.Orchestrator)
		s.mux.Handle("/api/target", targetHandler)

		// Live per-frame snapshots over WebSocket, fed by the pipeline.
		snapshots := NewSnapshotHandler()
		s.config.Orchestrator.SetObserver(snapshots.Publish)
		s.mux.Handle("/api/snapshots", snapshots)
	}

	if s.config.Store != nil {
		calibrationHandler := api.NewCalibrationHandler(s.config.Store, s.config.Orchestrator)
		s.mux.Handle("/api/calibration", calibrationHandler)
		s.mux.Handle("/api/calibration/", calibrationHandler)

		sessionsHandler := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionsHandler)
		s.mux.Handle("/api/sessions/", sessionsHandler)
	}

	// Register camera stream endpoint if Camera is configured
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
