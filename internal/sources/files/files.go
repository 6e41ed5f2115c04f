// Package files reads pages from a directory tree of YAML or JSON documents
// laid out as <root>/<type>/<id>.yaml.
package files

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Repository serves one page type from a directory.
type Repository struct {
	root string
	typ  pages.Type
}

// New returns a repository for pages of type t under root.
func New(root string, t pages.Type) *Repository {
	return &Repository{root: root, typ: t}
}

// dir is <root>/<name>, or <root>/<name>/<version> for versioned types.
func (r *Repository) dir() string {
	if r.typ.Version == "" {
		return filepath.Join(r.root, r.typ.Name)
	}
	return filepath.Join(r.root, r.typ.Name, r.typ.Version)
}

// Read loads <dir>/<id>.{yaml,yml,json}.
func (r *Repository) Read(ctx context.Context, id string) (pages.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, errors.NewValidationError("id", id, "must be a plain file name")
	}
	for _, ext := range extensions {
		path := filepath.Join(r.dir(), id+ext)
		if _, err := os.Stat(path); err == nil {
			return r.load(path, id)
		}
	}
	return nil, errors.NewNotFoundError(r.typ.String(), id)
}

// List loads every document in the type's directory, sorted by file name.
func (r *Repository) List(ctx context.Context) ([]pages.Page, error) {
	entries, err := os.ReadDir(r.dir())
	if os.IsNotExist(err) {
		return []pages.Page{}, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", r.dir(), err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]pages.Page, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ext := filepath.Ext(e.Name())
		if e.IsDir() || !supported(ext) {
			continue
		}
		p, err := r.load(filepath.Join(r.dir(), e.Name()), strings.TrimSuffix(e.Name(), ext))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repository) load(path, id string) (pages.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse(strings.TrimPrefix(filepath.Ext(path), "."), path, err)
	}
	return pages.DocumentFromMap(r.typ, id, m), nil
}

func supported(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
