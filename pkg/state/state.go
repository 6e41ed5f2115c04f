// Package state holds the shared broadcast that downloads publish into and
// that the filter engine observes.
//
// A State is a replay subject: every pushed value is retained, and every new
// subscriber first receives the whole history in push order, then live
// pushes. Values are never deduplicated and the stream never completes on
// its own.
package state

import (
	"context"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast/pkg/logging"
)

// State is the replay broadcast shared by a downloader and its readers.
type State struct {
	name   string
	logger *zerolog.Logger

	mu      sync.Mutex
	history []Value
	changed chan struct{} // closed and replaced on every push
	closed  bool
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger for push events.
func WithLogger(l *zerolog.Logger) Option {
	return func(s *State) { s.logger = l }
}

// WithName labels the state in log output.
func WithName(name string) Option {
	return func(s *State) { s.name = name }
}

// New creates an empty State.
func New(opts ...Option) *State {
	s := &State{changed: make(chan struct{})}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Push appends v to the history and wakes every subscriber. The returned
// value carries the sequence number and timestamp assigned to it. Pushes
// after Close are dropped and returned unstamped.
func (s *State) Push(v Value) Value {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn().Str("state", s.name).Msg("push after close dropped")
		return v
	}
	v.Seq = uint64(len(s.history)) + 1
	v.PushedAt = utc.Now()
	s.history = append(s.history, v)
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	s.logger.Debug().
		Str("state", s.name).
		Uint64("seq", v.Seq).
		Bool("collection", v.IsCollection()).
		Msg("value pushed")
	return v
}

// Subscribe replays the history and then follows live pushes. The channel
// is closed when ctx ends, or after the remaining history has been
// delivered once the state is closed. Each subscriber has its own cursor, so
// a slow reader never blocks Push or other readers.
func (s *State) Subscribe(ctx context.Context) <-chan Value {
	out := make(chan Value)
	go func() {
		defer close(out)
		next := 0
		for {
			s.mu.Lock()
			if next < len(s.history) {
				v := s.history[next]
				s.mu.Unlock()
				next++
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
				continue
			}
			if s.closed {
				s.mu.Unlock()
				return
			}
			wait := s.changed
			s.mu.Unlock()

			select {
			case <-wait:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of values pushed so far.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// History returns a copy of every value pushed so far, in push order.
func (s *State) History() []Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Value, len(s.history))
	copy(out, s.history)
	return out
}

// Close ends the state's scope. Subscribers finish delivering the history
// and then their channels close.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.changed)
}

// Closed reports whether Close has been called.
func (s *State) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
