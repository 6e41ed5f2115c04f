// Package cms exposes the broadcast state as typed, filtered page streams.
//
// Streams are lazy and restartable: every call subscribes afresh and
// replays the whole history before following live pushes. No operation here
// reports a failure; a query that never matches simply never emits. The
// one-shot lookups wait until the caller's context ends.
package cms

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/logging"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/state"
)

// CMS reads pages out of a shared State.
type CMS struct {
	state  *state.State
	logger *zerolog.Logger
}

// Option configures a CMS.
type Option func(*CMS)

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *CMS) { c.logger = l }
}

// New returns a CMS reading from st.
func New(st *state.State, opts ...Option) *CMS {
	c := &CMS{state: st}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	return c
}

// State returns the underlying broadcast.
func (c *CMS) State() *state.State {
	return c.state
}

// Updates streams every broadcast value, single or collection, unfiltered.
func (c *CMS) Updates(ctx context.Context) <-chan state.Value {
	return c.state.Subscribe(ctx)
}

// StreamPage emits every single-page broadcast tagged t that satisfies f,
// in push order. Collections are ignored.
func (c *CMS) StreamPage(ctx context.Context, t pages.Type, f *Filter) <-chan pages.Page {
	out := make(chan pages.Page)
	go func() {
		defer close(out)
		for v := range c.state.Subscribe(ctx) {
			p, ok := v.Page()
			if !ok || !pages.Is(p, t) || !f.Matches(p) {
				continue
			}
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// StreamPages emits every collection broadcast whose elements are all tagged
// t. A collection holding any other page is skipped whole. An empty
// collection matches.
func (c *CMS) StreamPages(ctx context.Context, t pages.Type) <-chan []pages.Page {
	out := make(chan []pages.Page)
	go func() {
		defer close(out)
		for v := range c.state.Subscribe(ctx) {
			ps, ok := v.Pages()
			if !ok || !pages.AllOf(ps, t) {
				continue
			}
			select {
			case out <- ps:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Page returns the first page StreamPage would emit. It blocks until a page
// matches or ctx ends.
func (c *CMS) Page(ctx context.Context, t pages.Type, f *Filter) (pages.Page, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, ok := <-c.StreamPage(ctx, t, f)
	if !ok {
		return nil, c.endOfStream(ctx, fmt.Sprintf("page %s where %s", t, f))
	}
	return p, nil
}

// Pages returns the first collection StreamPages would emit. It blocks until
// a collection matches or ctx ends.
func (c *CMS) Pages(ctx context.Context, t pages.Type) ([]pages.Page, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ps, ok := <-c.StreamPages(ctx, t)
	if !ok {
		return nil, c.endOfStream(ctx, fmt.Sprintf("pages %s", t))
	}
	return ps, nil
}

// endOfStream explains why a stream closed before emitting.
func (c *CMS) endOfStream(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapContext(op, err)
	}
	c.logger.Debug().Str("query", op).Msg("state closed before a match")
	return fmt.Errorf("%s: %w", op, errors.ErrClosed)
}
