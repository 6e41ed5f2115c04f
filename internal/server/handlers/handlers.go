// Package handlers provides HTTP request handlers for the pagecast API
// server.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast"
	"github.com/agentstation/pagecast/internal/server/response"
	ws "github.com/agentstation/pagecast/internal/server/websocket"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/logging"
	"github.com/agentstation/pagecast/pkg/pages"
)

const (
	// defaultWait bounds how long a read waits for a matching value.
	defaultWait = 5 * time.Second
	maxWait     = 60 * time.Second
)

// Handlers provides HTTP handlers for the API server.
type Handlers struct {
	client          pagecast.Client
	hub             *ws.Hub
	upgrader        websocket.Upgrader
	logger          *zerolog.Logger
	baseCtx         context.Context
	downloadTimeout time.Duration
	startTime       time.Time
}

// Config collects the handler dependencies.
type Config struct {
	Client          pagecast.Client
	Hub             *ws.Hub
	Upgrader        websocket.Upgrader
	Logger          *zerolog.Logger
	BaseContext     context.Context
	DownloadTimeout time.Duration
	StartTime       time.Time
}

// New creates a new Handlers instance.
func New(cfg Config) *Handlers {
	base := cfg.BaseContext
	if base == nil {
		base = context.Background()
	}
	start := cfg.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	return &Handlers{
		client:          cfg.Client,
		hub:             cfg.Hub,
		upgrader:        cfg.Upgrader,
		logger:          logging.OrNop(cfg.Logger),
		baseCtx:         base,
		downloadTimeout: cfg.DownloadTimeout,
		startTime:       start,
	}
}

// pageType reads the {type} path segment and the optional version query.
func pageType(r *http.Request) (pages.Type, error) {
	name := r.PathValue("type")
	if name == "" {
		return pages.Type{}, errors.NewValidationError("type", name, "page type is required")
	}
	t, err := pages.TypeFromString(name)
	if err != nil {
		return pages.Type{}, errors.NewValidationError("type", name, err.Error())
	}
	if v := r.URL.Query().Get("version"); v != "" {
		t.Version = v
	}
	return t, nil
}

// waitFor parses the wait query parameter.
func waitFor(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return defaultWait, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, errors.NewValidationError("wait", raw, "must be a non-negative duration")
	}
	return min(d, maxWait), nil
}

// fail logs err against the request logger and writes the mapped response.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Debug().Err(err).Msg("Request failed")
	response.ErrorFromType(w, err)
}
