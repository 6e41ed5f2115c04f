// Package server provides the HTTP server that exposes a pagecast client:
// downloads over POST, reads over GET, and live updates over SSE and
// WebSocket.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast"
	ws "github.com/agentstation/pagecast/internal/server/websocket"
	"github.com/agentstation/pagecast/pkg/logging"
	"github.com/agentstation/pagecast/pkg/pages"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client    pagecast.Client
	wsHub     *ws.Hub
	upgrader  websocket.Upgrader
	logger    *zerolog.Logger
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// New creates a new server instance with the given configuration.
func New(client pagecast.Client, cfg Config, logger *zerolog.Logger) *Server {
	logger = logging.OrNop(logger)
	logger.Debug().Msg("Creating new server instance")

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		client: client,
		wsHub:  ws.NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Allow all origins for WebSocket
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}

	s.connectHooks()
	return s
}

// connectHooks logs every push made through the client's downloader.
func (s *Server) connectHooks() {
	s.client.OnPageDownloaded(func(_ context.Context, p pages.Page, seq uint64) {
		s.logger.Debug().
			Str("data_type", p.PageType().String()).
			Uint64("seq", seq).
			Msg("Page pushed")
	})
	s.client.OnPagesDownloaded(func(_ context.Context, t pages.Type, ps []pages.Page, seq uint64) {
		s.logger.Debug().
			Str("data_type", t.String()).
			Int("count", len(ps)).
			Uint64("seq", seq).
			Msg("Pages pushed")
	})
}

// Start starts background services.
func (s *Server) Start() {
	s.logger.Debug().Msg("Starting WebSocket hub")
	go s.wsHub.Run(s.ctx)
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server for the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return s.ctx },
	}
}

// Shutdown stops background services and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for s.wsHub.ClientCount() > 0 {
		select {
		case <-ctx.Done():
			s.logger.Warn().Int("clients", s.wsHub.ClientCount()).Msg("Background services shutdown timed out")
			return ctx.Err()
		case <-ticker.C:
		}
	}
	s.logger.Info().Msg("Background services shut down successfully")
	return nil
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
