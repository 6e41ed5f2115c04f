// Package registration binds page types to the repository types able to
// produce them.
//
// A registration set is an ordered slice of Registration values. Entries of
// different shapes may share a set; Find narrows the set to one shape and one
// page type, preserving source order.
package registration

import (
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/repository"
)

// Shape distinguishes single-page from multi-page registrations.
type Shape int

const (
	ShapeSingle Shape = iota + 1
	ShapeMulti
)

// String returns the registration set name.
func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single-page"
	case ShapeMulti:
		return "multi-page"
	}
	return "unknown"
}

// Registration is an entry of a registration set.
type Registration interface {
	DataType() pages.Type
	Shape() Shape
	RepositoryName() string
}

// RepositoryType is an instantiable handle to a repository. New is called
// once per download attempt, so every attempt gets a fresh instance.
type RepositoryType[R any] struct {
	Name string
	New  func() (R, error)
}

// SinglePage registers a single page repository for a page type.
type SinglePage[S any] struct {
	Data       pages.Type
	Repository RepositoryType[repository.SinglePageRepository[S]]
}

// NewSinglePage returns a single page registration.
func NewSinglePage[S any](data pages.Type, name string, fn func() (repository.SinglePageRepository[S], error)) SinglePage[S] {
	return SinglePage[S]{
		Data:       data,
		Repository: RepositoryType[repository.SinglePageRepository[S]]{Name: name, New: fn},
	}
}

func (r SinglePage[S]) DataType() pages.Type   { return r.Data }
func (r SinglePage[S]) Shape() Shape           { return ShapeSingle }
func (r SinglePage[S]) RepositoryName() string { return r.Repository.Name }

// MultiPage registers a multi page repository for a page type.
type MultiPage struct {
	Data       pages.Type
	Repository RepositoryType[repository.MultiPageRepository]
}

// NewMultiPage returns a multi page registration.
func NewMultiPage(data pages.Type, name string, fn func() (repository.MultiPageRepository, error)) MultiPage {
	return MultiPage{
		Data:       data,
		Repository: RepositoryType[repository.MultiPageRepository]{Name: name, New: fn},
	}
}

func (r MultiPage) DataType() pages.Type   { return r.Data }
func (r MultiPage) Shape() Shape           { return ShapeMulti }
func (r MultiPage) RepositoryName() string { return r.Repository.Name }

// Find returns every entry of registrations whose dynamic type is R and whose
// data type equals data, in source order. When nothing matches it returns a
// NotRegisteredError naming data and R's shape.
//
// R must be a concrete registration type such as SinglePage[string] or
// MultiPage.
func Find[R Registration](registrations []Registration, data pages.Type) ([]R, error) {
	var found []R
	for _, entry := range registrations {
		if r, ok := entry.(R); ok && r.DataType() == data {
			found = append(found, r)
		}
	}
	if len(found) == 0 {
		return nil, errors.NewNotRegisteredError(data.String(), shapeOf[R]().String())
	}
	return found, nil
}

func shapeOf[R Registration]() Shape {
	var zero R
	if r, ok := any(zero).(Registration); ok {
		return r.Shape()
	}
	return 0
}

// Row describes a registration for listings.
type Row struct {
	DataType   string `json:"data_type" yaml:"data_type"`
	Shape      string `json:"shape" yaml:"shape"`
	Repository string `json:"repository" yaml:"repository"`
}

// Describe returns one row per registration, in source order.
func Describe(registrations []Registration) []Row {
	rows := make([]Row, 0, len(registrations))
	for _, r := range registrations {
		rows = append(rows, Row{
			DataType:   r.DataType().String(),
			Shape:      r.Shape().String(),
			Repository: r.RepositoryName(),
		})
	}
	return rows
}

// Types returns the distinct page types registered, in first-seen order.
func Types(registrations []Registration) []pages.Type {
	seen := make(map[pages.Type]bool)
	var out []pages.Type
	for _, r := range registrations {
		if t := r.DataType(); !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
