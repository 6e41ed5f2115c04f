// Package pages defines the page values that repositories produce and the
// type tag used to identify them at runtime.
package pages

import (
	"fmt"
	"strings"
)

// Type identifies a kind of page. Two values are the same page type when
// their Name and Version are equal.
type Type struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// NewType returns an unversioned page type.
func NewType(name string) Type {
	return Type{Name: name}
}

// NewVersionedType returns a page type with a version.
func NewVersionedType(name, version string) Type {
	return Type{Name: name, Version: version}
}

// TypeFromString parses "name" or "name/version".
func TypeFromString(s string) (Type, error) {
	s = strings.TrimSpace(s)
	name, version, _ := strings.Cut(s, "/")
	if name == "" {
		return Type{}, fmt.Errorf("invalid page type %q: empty name", s)
	}
	if strings.Contains(version, "/") {
		return Type{}, fmt.Errorf("invalid page type %q: too many separators", s)
	}
	return Type{Name: name, Version: version}, nil
}

// MustTypeFromString is TypeFromString for static values. It panics on error.
func MustTypeFromString(s string) Type {
	t, err := TypeFromString(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns "name" or "name/version".
func (t Type) String() string {
	if t.Version == "" {
		return t.Name
	}
	return t.Name + "/" + t.Version
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t == Type{}
}

// Page is a value a repository produces. The producer sets the type tag;
// consumers compare it rather than inspecting the value's Go type.
type Page interface {
	PageType() Type
}

// Is reports whether p is non-nil and tagged with t.
func Is(p Page, t Type) bool {
	return p != nil && p.PageType() == t
}

// AllOf reports whether every element of ps is tagged with t. An empty
// collection satisfies any type.
func AllOf(ps []Page, t Type) bool {
	for _, p := range ps {
		if !Is(p, t) {
			return false
		}
	}
	return true
}

// FieldValuer is implemented by pages that expose their fields by key
// without reflection.
type FieldValuer interface {
	Field(key string) (any, bool)
}
