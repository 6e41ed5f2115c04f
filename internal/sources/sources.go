// Package sources describes the concrete page sources the CLI and server can
// register: YAML/JSON directories, HTTP APIs and SQLite tables.
package sources

import (
	"context"
	"os"
	"time"

	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/repository"
)

// Kind names a source implementation.
type Kind string

const (
	KindFiles  Kind = "files"
	KindHTTP   Kind = "http"
	KindSQLite Kind = "sqlite"
)

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Spec configures one source.
type Spec struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`

	// Path is the directory for files sources and the database path for
	// sqlite sources.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// URL is the base URL of an http source.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Token authenticates http requests. $VAR references are expanded.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// AuthHeader selects how Token is sent: empty for bearer, a header
	// name, or "?param" for a query parameter.
	AuthHeader string `json:"auth_header,omitempty" yaml:"auth_header,omitempty"`

	// Latency delays every call, e.g. "50ms".
	Latency string `json:"latency,omitempty" yaml:"latency,omitempty"`
}

// Secret returns the token with environment references expanded.
func (s Spec) Secret() string {
	return os.ExpandEnv(s.Token)
}

// Delay parses Latency. An empty latency is zero.
func (s Spec) Delay() (time.Duration, error) {
	if s.Latency == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Latency)
	if err != nil || d < 0 {
		return 0, errors.NewValidationError("latency", s.Latency, "must be a non-negative duration")
	}
	return d, nil
}

// Validate checks the fields the kind requires.
func (s Spec) Validate() error {
	if s.Name == "" {
		return errors.NewValidationError("name", s.Name, "cannot be empty")
	}
	switch s.Kind {
	case KindFiles, KindSQLite:
		if s.Path == "" {
			return errors.NewValidationError("path", s.Path, "required for "+s.Kind.String()+" source "+s.Name)
		}
	case KindHTTP:
		if s.URL == "" {
			return errors.NewValidationError("url", s.URL, "required for http source "+s.Name)
		}
	default:
		return errors.NewValidationError("kind", s.Kind, "unsupported source kind for "+s.Name)
	}
	_, err := s.Delay()
	return err
}

// Delayed wraps a repository so every call waits d first. The wait ends
// early with the context's error.
func Delayed(repo repository.ReadOnlyRepository[string], d time.Duration) repository.ReadOnlyRepository[string] {
	if d <= 0 {
		return repo
	}
	return &delayed{repo: repo, d: d}
}

type delayed struct {
	repo repository.ReadOnlyRepository[string]
	d    time.Duration
}

func (r *delayed) wait(ctx context.Context) error {
	t := time.NewTimer(r.d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *delayed) Read(ctx context.Context, id string) (pages.Page, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.repo.Read(ctx, id)
}

func (r *delayed) List(ctx context.Context) ([]pages.Page, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.repo.List(ctx)
}
