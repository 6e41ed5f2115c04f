// Package pagecast populates page values from competing repositories and
// broadcasts them to reactive readers.
//
// A Client owns a downloader and a CMS over one shared state:
//
//	client, err := pagecast.New(pagecast.WithRegistrations(
//		registration.NewSinglePage(article, "api", newAPIRepository),
//		registration.NewSinglePage(article, "cache", newCacheRepository),
//	))
//	go client.DownloadPage(ctx, article, "42")
//	page, err := client.CMS().Page(ctx, article, cms.Where("id", "42"))
package pagecast

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentstation/pagecast/pkg/cms"
	"github.com/agentstation/pagecast/pkg/downloader"
	"github.com/agentstation/pagecast/pkg/logging"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
	"github.com/agentstation/pagecast/pkg/state"
)

// Client downloads pages and exposes them as streams.
type Client interface {
	// DownloadPage races the single page repositories registered for t.
	DownloadPage(ctx context.Context, t pages.Type, id string) error

	// DownloadPages races the multi page repositories registered for t.
	DownloadPages(ctx context.Context, t pages.Type) error

	// DownloadPageValue is DownloadPage returning the value this call pushed.
	DownloadPageValue(ctx context.Context, t pages.Type, id string) (state.Value, error)

	// DownloadPagesValue is DownloadPages returning the value this call pushed.
	DownloadPagesValue(ctx context.Context, t pages.Type) (state.Value, error)

	// DownloadAll runs several downloads with bounded concurrency.
	DownloadAll(ctx context.Context, reqs []downloader.Request[string]) error

	// CMS returns the filter engine over the client's state.
	CMS() *cms.CMS

	// State returns the client's broadcast state.
	State() *state.State

	// Registrations returns a copy of the registration set.
	Registrations() []registration.Registration

	// OnPageDownloaded registers a callback for single page downloads.
	OnPageDownloaded(PageDownloadedHook)

	// OnPagesDownloaded registers a callback for collection downloads.
	OnPagesDownloaded(PagesDownloadedHook)

	// Close ends the state scope if the client owns it.
	Close()
}

type client struct {
	config     *config
	state      *state.State
	downloader *downloader.Downloader[string]
	cms        *cms.CMS
	hooks      *hooks
	ownsStates bool
	closeOnce  sync.Once
}

// New creates a Client with the given options.
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	logger := logging.OrNop(cfg.logger)
	c := &client{config: cfg, hooks: newHooks()}

	states := cfg.states
	if states == nil {
		states = state.NewRegistry(state.WithLogger(logger))
		c.ownsStates = true
	}
	c.state = states.For(cfg.family)

	c.downloader = downloader.New[string](c.state, cfg.registrations,
		downloader.WithLogger(logger),
		downloader.WithRacePolicy(cfg.policy),
		downloader.WithInstantiator(cfg.instantiator),
		downloader.WithBatchLimit(cfg.batchLimit),
		downloader.WithPushHook(c.hooks.trigger),
	)
	c.cms = cms.New(c.state, cms.WithLogger(logger))
	return c, nil
}

func (c *client) DownloadPage(ctx context.Context, t pages.Type, id string) error {
	return c.downloader.DownloadPage(ctx, t, id)
}

func (c *client) DownloadPages(ctx context.Context, t pages.Type) error {
	return c.downloader.DownloadPages(ctx, t)
}

func (c *client) DownloadPageValue(ctx context.Context, t pages.Type, id string) (state.Value, error) {
	return c.downloader.DownloadPageValue(ctx, t, id)
}

func (c *client) DownloadPagesValue(ctx context.Context, t pages.Type) (state.Value, error) {
	return c.downloader.DownloadPagesValue(ctx, t)
}

func (c *client) DownloadAll(ctx context.Context, reqs []downloader.Request[string]) error {
	return c.downloader.DownloadAll(ctx, reqs)
}

func (c *client) CMS() *cms.CMS                              { return c.cms }
func (c *client) State() *state.State                        { return c.state }
func (c *client) Registrations() []registration.Registration { return c.downloader.Registrations() }

func (c *client) OnPageDownloaded(fn PageDownloadedHook)   { c.hooks.OnPageDownloaded(fn) }
func (c *client) OnPagesDownloaded(fn PagesDownloadedHook) { c.hooks.OnPagesDownloaded(fn) }

// Close closes the state when the client created its own registry. A shared
// registry is left to its owner.
func (c *client) Close() {
	c.closeOnce.Do(func() {
		if c.ownsStates {
			c.state.Close()
		}
	})
}
