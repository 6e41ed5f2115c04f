// Package remote reads pages from an HTTP JSON API:
//
//	GET <base>/<type>/<id>  -> object
//	GET <base>/<type>       -> array of objects
package remote

import (
	"context"
	"net/url"
	"strings"

	"github.com/agentstation/pagecast/internal/transport"
	"github.com/agentstation/pagecast/pkg/pages"
)

// Repository serves one page type from an HTTP API.
type Repository struct {
	base   string
	typ    pages.Type
	client *transport.Client
}

// New returns a repository for pages of type t at base.
func New(base string, t pages.Type, client *transport.Client) *Repository {
	return &Repository{base: strings.TrimRight(base, "/"), typ: t, client: client}
}

func (r *Repository) endpoint(parts ...string) string {
	segs := []string{r.base, url.PathEscape(r.typ.Name)}
	if r.typ.Version != "" {
		segs = append(segs, url.PathEscape(r.typ.Version))
	}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return strings.Join(segs, "/")
}

// Read fetches one page.
func (r *Repository) Read(ctx context.Context, id string) (pages.Page, error) {
	var m map[string]any
	if err := r.client.GetJSON(ctx, r.endpoint(id), &m); err != nil {
		return nil, err
	}
	return pages.DocumentFromMap(r.typ, id, m), nil
}

// List fetches every page of the type. Items without an "id" key get an
// empty id.
func (r *Repository) List(ctx context.Context) ([]pages.Page, error) {
	var items []map[string]any
	if err := r.client.GetJSON(ctx, r.endpoint(), &items); err != nil {
		return nil, err
	}
	out := make([]pages.Page, 0, len(items))
	for _, m := range items {
		out = append(out, pages.DocumentFromMap(r.typ, "", m))
	}
	return out, nil
}
