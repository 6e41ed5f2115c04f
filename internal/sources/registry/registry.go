// Package registry maps source kinds to repository constructors.
// It is separate from the sources package to avoid import cycles.
package registry

import (
	"fmt"
	"slices"

	"github.com/agentstation/pagecast/internal/sources"
	"github.com/agentstation/pagecast/internal/sources/files"
	"github.com/agentstation/pagecast/internal/sources/remote"
	"github.com/agentstation/pagecast/internal/sources/sqlite"
	"github.com/agentstation/pagecast/internal/transport"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/repository"
)

// Constructor builds a repository for one page type from a source spec.
type Constructor func(spec sources.Spec, t pages.Type) (repository.ReadOnlyRepository[string], error)

var registry = map[sources.Kind]Constructor{
	sources.KindFiles: func(s sources.Spec, t pages.Type) (repository.ReadOnlyRepository[string], error) {
		return files.New(s.Path, t), nil
	},
	sources.KindHTTP: func(s sources.Spec, t pages.Type) (repository.ReadOnlyRepository[string], error) {
		client := transport.New(s.Name, transport.AuthFor(s.AuthHeader), s.Secret())
		return remote.New(s.URL, t, client), nil
	},
	sources.KindSQLite: func(s sources.Spec, t pages.Type) (repository.ReadOnlyRepository[string], error) {
		db, err := sqlite.Open(s.Path)
		if err != nil {
			return nil, err
		}
		return sqlite.New(db, t), nil
	},
}

// Get creates a NEW repository for spec and t. Each call returns a fresh
// instance; configured latency is applied around it.
func Get(spec sources.Spec, t pages.Type) (repository.ReadOnlyRepository[string], error) {
	newRepo, ok := registry[spec.Kind]
	if !ok {
		return nil, &errors.ValidationError{
			Field:   "kind",
			Value:   spec.Kind,
			Message: fmt.Sprintf("unsupported source kind: %s", spec.Kind),
		}
	}
	delay, err := spec.Delay()
	if err != nil {
		return nil, err
	}
	repo, err := newRepo(spec, t)
	if err != nil {
		return nil, err
	}
	return sources.Delayed(repo, delay), nil
}

// Has checks if a kind has a constructor.
func Has(kind sources.Kind) bool {
	_, ok := registry[kind]
	return ok
}

// List returns every supported kind, sorted.
func List() []sources.Kind {
	kinds := make([]sources.Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
