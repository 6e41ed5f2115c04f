// Package downloader resolves the repositories registered for a page type,
// races them, and pushes the winning result into the shared state.
//
// Each download instantiates a fresh repository per candidate. The first
// candidate to settle decides the outcome; the others keep running and
// their results are discarded. A successful download pushes exactly once,
// a failed one never pushes.
package downloader

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast/pkg/logging"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
	"github.com/agentstation/pagecast/pkg/repository"
	"github.com/agentstation/pagecast/pkg/state"
)

// Downloader populates a State from the repositories in a registration set.
// S is the id type single page repositories are read with.
type Downloader[S any] struct {
	state         *state.State
	registrations []registration.Registration
	opts          *options
	logger        *zerolog.Logger
}

// New returns a Downloader pushing into st. The registration set is copied.
func New[S any](st *state.State, registrations []registration.Registration, opts ...Option) *Downloader[S] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	regs := make([]registration.Registration, len(registrations))
	copy(regs, registrations)
	return &Downloader[S]{
		state:         st,
		registrations: regs,
		opts:          o,
		logger:        logging.OrNop(o.logger),
	}
}

// Registrations returns a copy of the registration set.
func (d *Downloader[S]) Registrations() []registration.Registration {
	out := make([]registration.Registration, len(d.registrations))
	copy(out, d.registrations)
	return out
}

// State returns the state downloads push into.
func (d *Downloader[S]) State() *state.State {
	return d.state
}

// DownloadPage fetches page id of type t from every registered single page
// repository and pushes the first settlement if it is a success.
func (d *Downloader[S]) DownloadPage(ctx context.Context, t pages.Type, id S) error {
	_, err := d.DownloadPageValue(ctx, t, id)
	return err
}

// DownloadPageValue is DownloadPage returning the value it pushed, stamped
// with its sequence number. Other values pushed concurrently never leak into
// the result.
func (d *Downloader[S]) DownloadPageValue(ctx context.Context, t pages.Type, id S) (state.Value, error) {
	regs, err := registration.Find[registration.SinglePage[S]](d.registrations, t)
	if err != nil {
		d.logger.Debug().Err(err).Msg("no registration")
		return state.Value{}, err
	}

	log := d.attemptLogger(t, registration.ShapeSingle)
	types := make([]registration.RepositoryType[repository.SinglePageRepository[S]], len(regs))
	for i, r := range regs {
		types[i] = r.Repository
	}

	cands, err := instantiateAll(ctx, d.opts, log, t.String(), registration.ShapeSingle.String(), types)
	if err != nil {
		return state.Value{}, err
	}

	res, err := race(ctx, d.opts, log, t.String(), "read", cands,
		func(ctx context.Context, repo repository.SinglePageRepository[S]) (pages.Page, error) {
			return repo.Read(ctx, id)
		})
	if err != nil {
		return state.Value{}, err
	}

	return d.push(ctx, log, t, state.Single(res.value)), nil
}

// DownloadPages lists every page of type t from every registered multi page
// repository and pushes the first settlement if it is a success.
func (d *Downloader[S]) DownloadPages(ctx context.Context, t pages.Type) error {
	_, err := d.DownloadPagesValue(ctx, t)
	return err
}

// DownloadPagesValue is DownloadPages returning the collection it pushed.
func (d *Downloader[S]) DownloadPagesValue(ctx context.Context, t pages.Type) (state.Value, error) {
	regs, err := registration.Find[registration.MultiPage](d.registrations, t)
	if err != nil {
		d.logger.Debug().Err(err).Msg("no registration")
		return state.Value{}, err
	}

	log := d.attemptLogger(t, registration.ShapeMulti)
	types := make([]registration.RepositoryType[repository.MultiPageRepository], len(regs))
	for i, r := range regs {
		types[i] = r.Repository
	}

	cands, err := instantiateAll(ctx, d.opts, log, t.String(), registration.ShapeMulti.String(), types)
	if err != nil {
		return state.Value{}, err
	}

	res, err := race(ctx, d.opts, log, t.String(), "list", cands,
		func(ctx context.Context, repo repository.MultiPageRepository) ([]pages.Page, error) {
			return repo.List(ctx)
		})
	if err != nil {
		return state.Value{}, err
	}

	return d.push(ctx, log, t, state.Collection(res.value)), nil
}

func (d *Downloader[S]) attemptLogger(t pages.Type, shape registration.Shape) *zerolog.Logger {
	l := d.logger.With().
		Str("download_id", uuid.NewString()).
		Str("data_type", t.String()).
		Str("shape", shape.String()).
		Str("policy", d.opts.policy.String()).
		Logger()
	return &l
}

// push stamps v into the state, runs the hooks and returns the stamped value.
func (d *Downloader[S]) push(ctx context.Context, log *zerolog.Logger, t pages.Type, v state.Value) state.Value {
	v = d.state.Push(v)
	log.Debug().Uint64("seq", v.Seq).Msg("pushed")
	for _, h := range d.opts.hooks {
		h(ctx, t, v)
	}
	return v
}
