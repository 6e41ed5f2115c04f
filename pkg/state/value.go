package state

import (
	"slices"

	"github.com/agentstation/utc"

	"github.com/agentstation/pagecast/pkg/pages"
)

// Value is one broadcast: either a single page or a collection of
// (possibly partial) pages. Seq and PushedAt are stamped by State.Push.
type Value struct {
	Seq      uint64   `json:"seq" yaml:"seq"`
	PushedAt utc.Time `json:"pushed_at" yaml:"pushed_at"`

	page       pages.Page
	collection []pages.Page
	multi      bool
}

// Single wraps one page.
func Single(p pages.Page) Value {
	return Value{page: p}
}

// Collection wraps a list of pages. The slice is copied.
func Collection(ps []pages.Page) Value {
	return Value{collection: slices.Clone(ps), multi: true}
}

// IsCollection reports whether v carries a collection.
func (v Value) IsCollection() bool {
	return v.multi
}

// Page returns the single page, if v carries one.
func (v Value) Page() (pages.Page, bool) {
	if v.multi || v.page == nil {
		return nil, false
	}
	return v.page, true
}

// Pages returns a copy of the collection, if v carries one. An empty
// collection is returned as a non-nil empty slice.
func (v Value) Pages() ([]pages.Page, bool) {
	if !v.multi {
		return nil, false
	}
	out := make([]pages.Page, len(v.collection))
	copy(out, v.collection)
	return out, true
}

// Payload returns the page or the collection for encoding.
func (v Value) Payload() any {
	if v.multi {
		return v.collection
	}
	return v.page
}
