package state

import (
	"slices"
	"sync"
)

// Family names a group of page types that share one State.
type Family string

// DefaultFamily is used when a caller does not name one.
const DefaultFamily Family = "default"

// Registry owns one State per family.
type Registry struct {
	mu     sync.RWMutex
	states map[Family]*State
	opts   []Option
}

// NewRegistry creates a Registry. opts apply to every State it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{states: make(map[Family]*State), opts: opts}
}

// For returns the State for family, creating it on first use.
func (r *Registry) For(family Family) *State {
	if family == "" {
		family = DefaultFamily
	}

	r.mu.RLock()
	s, ok := r.states[family]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[family]; ok {
		return s
	}
	s = New(append(slices.Clone(r.opts), WithName(string(family)))...)
	r.states[family] = s
	return s
}

// Families returns the families created so far, sorted.
func (r *Registry) Families() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Family, 0, len(r.states))
	for f := range r.states {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Close closes every State.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		s.Close()
	}
}
