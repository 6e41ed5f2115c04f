// Package app provides the application context and dependency management
// for the pagecast CLI: configuration, logging and the lazily built client.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast"
	"github.com/agentstation/pagecast/cmd/application"
	"github.com/agentstation/pagecast/internal/config"
	"github.com/agentstation/pagecast/internal/sources/sqlite"
	"github.com/agentstation/pagecast/pkg/downloader"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/state"
)

// App represents the pagecast application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.Mutex
	client pagecast.Client
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Timeout returns the per-download timeout.
func (a *App) Timeout() time.Duration { return a.config.Timeout }

// Client returns the pagecast client, building it from the registration
// file on first use.
func (a *App) Client() (pagecast.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	opts, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	c, err := pagecast.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.client = c
	return c, nil
}

// clientOptions reads the registration file and applies flag overrides.
func (a *App) clientOptions() ([]pagecast.Option, error) {
	file, err := config.Load(a.config.Registrations)
	if err != nil {
		return nil, err
	}
	regs, err := file.Build()
	if err != nil {
		return nil, err
	}

	policy := file.RacePolicy()
	if a.config.Policy != "" {
		p, ok := downloader.ParsePolicy(a.config.Policy)
		if !ok {
			return nil, errors.NewValidationError("policy", a.config.Policy, "must be first-settled or first-success")
		}
		policy = p
	}

	opts := []pagecast.Option{
		pagecast.WithRegistrations(regs...),
		pagecast.WithLogger(a.logger),
		pagecast.WithRacePolicy(policy),
	}
	if file.Family != "" {
		opts = append(opts, pagecast.WithFamily(state.Family(file.Family)))
	}
	if a.config.BatchLimit > 0 {
		opts = append(opts, pagecast.WithBatchLimit(a.config.BatchLimit))
	}

	a.logger.Debug().
		Str("file", a.config.Registrations).
		Int("registrations", len(regs)).
		Str("policy", policy.String()).
		Msg("Loaded registrations")
	return opts, nil
}

// Shutdown closes the client and any shared database handles.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	c := a.client
	a.client = nil
	a.mu.Unlock()

	if c != nil {
		c.Close()
	}
	return sqlite.CloseAll()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a prebuilt client (useful for testing).
func WithClient(c pagecast.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
