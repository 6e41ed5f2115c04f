package pagecast

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast/pkg/downloader"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/registration"
	"github.com/agentstation/pagecast/pkg/state"
)

// Option is a function that configures a Client.
type Option func(*config) error

type config struct {
	registrations []registration.Registration
	logger        *zerolog.Logger
	family        state.Family
	states        *state.Registry
	policy        downloader.Policy
	instantiator  downloader.Instantiator
	batchLimit    int
}

func defaultConfig() *config {
	return &config{
		family:     state.DefaultFamily,
		policy:     downloader.FirstSettled,
		batchLimit: downloader.DefaultBatchLimit,
	}
}

// WithRegistrations appends entries to the registration set.
func WithRegistrations(regs ...registration.Registration) Option {
	return func(c *config) error {
		c.registrations = append(c.registrations, regs...)
		return nil
	}
}

// WithLogger sets the logger shared by the downloader, state and CMS.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// WithFamily selects which state of the registry the client uses.
func WithFamily(f state.Family) Option {
	return func(c *config) error {
		if f == "" {
			return errors.NewValidationError("family", f, "cannot be empty")
		}
		c.family = f
		return nil
	}
}

// WithStateRegistry shares states with other clients built on the same
// registry. Clients of the same family then observe each other's downloads.
func WithStateRegistry(r *state.Registry) Option {
	return func(c *config) error {
		if r == nil {
			return errors.NewValidationError("states", nil, "registry is nil")
		}
		c.states = r
		return nil
	}
}

// WithRacePolicy sets how competing repositories settle a download.
func WithRacePolicy(p downloader.Policy) Option {
	return func(c *config) error {
		c.policy = p
		return nil
	}
}

// WithInstantiator overrides how repositories are constructed.
func WithInstantiator(fn downloader.Instantiator) Option {
	return func(c *config) error {
		c.instantiator = fn
		return nil
	}
}

// WithBatchLimit bounds DownloadAll concurrency.
func WithBatchLimit(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.NewValidationError("batch_limit", n, "must be positive")
		}
		c.batchLimit = n
		return nil
	}
}
