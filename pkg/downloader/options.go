package downloader

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/state"
)

// Policy decides which candidate settles a race.
type Policy int

const (
	// FirstSettled settles with whichever candidate returns first, success
	// or failure.
	FirstSettled Policy = iota
	// FirstSuccess settles with the first success and fails only once every
	// candidate has failed.
	FirstSuccess
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case FirstSettled:
		return "first-settled"
	case FirstSuccess:
		return "first-success"
	}
	return "unknown"
}

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "first-settled":
		return FirstSettled, true
	case "first-success":
		return FirstSuccess, true
	}
	return FirstSettled, false
}

// Instantiator constructs a repository. build runs the registered
// constructor; an Instantiator may wrap it, replace it, or inject
// dependencies into its result. It is called once per candidate per
// download.
type Instantiator func(ctx context.Context, name string, build func() (any, error)) (any, error)

// PushHook observes a value after it has been pushed.
type PushHook func(ctx context.Context, t pages.Type, v state.Value)

// DefaultBatchLimit bounds DownloadAll when no limit is set.
const DefaultBatchLimit = 4

type options struct {
	logger      *zerolog.Logger
	instantiate Instantiator
	policy      Policy
	batchLimit  int
	hooks       []PushHook
}

func defaultOptions() *options {
	return &options{
		instantiate: func(_ context.Context, _ string, build func() (any, error)) (any, error) {
			return build()
		},
		policy:     FirstSettled,
		batchLimit: DefaultBatchLimit,
	}
}

// Option configures a Downloader.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInstantiator overrides how repositories are constructed.
func WithInstantiator(fn Instantiator) Option {
	return func(o *options) {
		if fn != nil {
			o.instantiate = fn
		}
	}
}

// WithRacePolicy sets the race policy. The default is FirstSettled.
func WithRacePolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithBatchLimit bounds how many downloads DownloadAll runs at once.
func WithBatchLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchLimit = n
		}
	}
}

// WithPushHook registers a hook called after every successful push.
func WithPushHook(h PushHook) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = append(o.hooks, h)
		}
	}
}
