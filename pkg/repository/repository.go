// Package repository defines the contract that page sources satisfy.
//
// A repository is an opaque remote data source. Errors it returns are
// propagated to callers unchanged. Downloads only ever read; the write
// half of Repository is for sources that are also maintained through
// pagecast.
package repository

import (
	"context"

	"github.com/agentstation/pagecast/pkg/pages"
)

// SinglePageRepository reads one page by id.
type SinglePageRepository[S any] interface {
	Read(ctx context.Context, id S) (pages.Page, error)
}

// MultiPageRepository lists every page it holds. The returned pages may be
// partial.
type MultiPageRepository interface {
	List(ctx context.Context) ([]pages.Page, error)
}

// ReadOnlyRepository is both a single and a multi page repository.
type ReadOnlyRepository[S any] interface {
	SinglePageRepository[S]
	MultiPageRepository
}

// Repository is a read-write page source.
type Repository[S any] interface {
	ReadOnlyRepository[S]

	// Create stores a new page and returns it as stored.
	Create(ctx context.Context, p pages.Page) (pages.Page, error)

	// Update replaces page id and returns it as stored.
	Update(ctx context.Context, id S, p pages.Page) (pages.Page, error)

	// Destroy removes page id.
	Destroy(ctx context.Context, id S) error
}

// SinglePageFunc adapts a function to SinglePageRepository.
type SinglePageFunc[S any] func(ctx context.Context, id S) (pages.Page, error)

// Read implements SinglePageRepository.
func (f SinglePageFunc[S]) Read(ctx context.Context, id S) (pages.Page, error) {
	return f(ctx, id)
}

// MultiPageFunc adapts a function to MultiPageRepository.
type MultiPageFunc func(ctx context.Context) ([]pages.Page, error)

// List implements MultiPageRepository.
func (f MultiPageFunc) List(ctx context.Context) ([]pages.Page, error) {
	return f(ctx)
}
