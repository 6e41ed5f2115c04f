package server

import (
	"net/http"
	"strings"

	"github.com/agentstation/pagecast/internal/server/handlers"
	"github.com/agentstation/pagecast/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(handlers.Config{
		Client:          s.client,
		Hub:             s.wsHub,
		Upgrader:        s.upgrader,
		Logger:          s.logger,
		BaseContext:     s.ctx,
		DownloadTimeout: s.config.DownloadTimeout,
		StartTime:       s.startTime,
	})

	s.registerRoutes(mux, h)

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	)(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := strings.TrimRight(s.config.PathPrefix, "/")

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health endpoints
	mux.HandleFunc("GET /health", h.HandleHealth)
	if prefix != "" {
		mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	}
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Registrations
	mux.HandleFunc("GET "+prefix+"/registrations", h.HandleRegistrations)

	// Downloads
	mux.HandleFunc("POST "+prefix+"/pages/{type}", h.HandleDownloadPages)
	mux.HandleFunc("POST "+prefix+"/pages/{type}/{id}", h.HandleDownloadPage)

	// Reads
	mux.HandleFunc("GET "+prefix+"/pages/{type}", h.HandleListPages)
	mux.HandleFunc("GET "+prefix+"/pages/{type}/{id}", h.HandleGetPage)

	// Real-time endpoints
	mux.HandleFunc("GET "+prefix+"/pages/{type}/stream", h.HandleStreamPage)
	mux.HandleFunc("GET "+prefix+"/pages/{type}/list/stream", h.HandleStreamPages)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleUpdatesStream)
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
}
