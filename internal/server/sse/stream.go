// Package sse provides Server-Sent Events support for page streams.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/agentstation/pagecast/pkg/errors"
)

// Event names written to streams.
const (
	EventConnected = "connected"
	EventPage      = "page"
	EventPages     = "pages"
)

// Event represents a Server-Sent Event.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
	ID    string `json:"id,omitempty"`
}

// ErrNoFlush reports a response writer that cannot stream.
var ErrNoFlush = errors.New("response writer does not support flushing")

// Stream writes events to one SSE client.
type Stream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	sent    uint64
}

// NewStream prepares w for event streaming. It fails if w cannot flush.
func NewStream(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.WrapResource("stream", "sse", "", ErrNoFlush)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher}, nil
}

// Send writes one event and flushes it. Events without an ID are numbered
// in send order.
func (s *Stream) Send(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", e.Event, err)
	}

	s.sent++
	id := e.ID
	if id == "" {
		id = strconv.FormatUint(s.sent, 10)
	}

	if _, err := fmt.Fprintf(s.w, "id: %s\nevent: %s\ndata: %s\n\n", id, e.Event, data); err != nil {
		return errors.WrapIO("write", "sse", err)
	}
	s.flusher.Flush()
	return nil
}

// Sent returns the number of events written.
func (s *Stream) Sent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}
