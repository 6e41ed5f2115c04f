// Package sqlite stores pages in a SQLite table:
//
//	CREATE TABLE pages (type TEXT, id TEXT, body TEXT, PRIMARY KEY (type, id))
//
// body holds a JSON object. Database handles are shared per path for the
// life of the process.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	type TEXT NOT NULL,
	id   TEXT NOT NULL,
	body TEXT NOT NULL,
	PRIMARY KEY (type, id)
);`

var (
	mu  sync.Mutex
	dbs = make(map[string]*sql.DB)
)

// Open returns the shared handle for path, creating the schema on first
// use.
func Open(path string) (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db, ok := dbs[path]; ok {
		return db, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("create schema", path, err)
	}
	dbs[path] = db
	return db, nil
}

// CloseAll closes every shared handle.
func CloseAll() error {
	mu.Lock()
	defer mu.Unlock()
	var errs []error
	for path, db := range dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, errors.WrapIO("close", path, err))
		}
		delete(dbs, path)
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing databases: %v", errs)
	}
	return nil
}

// Put stores a page body, replacing any previous row.
func Put(ctx context.Context, db *sql.DB, t pages.Type, id string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return errors.WrapParse("json", id, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO pages (type, id, body) VALUES (?, ?, ?)
		 ON CONFLICT(type, id) DO UPDATE SET body = excluded.body`,
		t.String(), id, string(body))
	return errors.WrapIO("write", t.String()+"/"+id, err)
}

// Repository serves one page type from the pages table.
type Repository struct {
	db  *sql.DB
	typ pages.Type
}

var _ repository.Repository[string] = (*Repository)(nil)

// New returns a repository for pages of type t.
func New(db *sql.DB, t pages.Type) *Repository {
	return &Repository{db: db, typ: t}
}

// Read loads one row.
func (r *Repository) Read(ctx context.Context, id string) (pages.Page, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM pages WHERE type = ? AND id = ?`, r.typ.String(), id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(r.typ.String(), id)
	}
	if err != nil {
		return nil, errors.WrapIO("query", r.typ.String()+"/"+id, err)
	}
	return r.decode(id, body)
}

// List loads every row of the type ordered by id.
func (r *Repository) List(ctx context.Context) ([]pages.Page, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, body FROM pages WHERE type = ? ORDER BY id`, r.typ.String())
	if err != nil {
		return nil, errors.WrapIO("query", r.typ.String(), err)
	}
	defer func() { _ = rows.Close() }()

	out := []pages.Page{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, errors.WrapIO("scan", r.typ.String(), err)
		}
		p, err := r.decode(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO("query", r.typ.String(), err)
	}
	return out, nil
}

// Create inserts p. Its id comes from the "id" field; an existing row with
// the same id is an error.
func (r *Repository) Create(ctx context.Context, p pages.Page) (pages.Page, error) {
	doc, err := r.document(p, "")
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, errors.NewValidationError("id", "", "page has no id")
	}
	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, errors.WrapParse("json", doc.ID, err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO pages (type, id, body) VALUES (?, ?, ?) ON CONFLICT(type, id) DO NOTHING`,
		r.typ.String(), doc.ID, string(body))
	if err != nil {
		return nil, errors.WrapIO("insert", r.typ.String()+"/"+doc.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.WrapResource("create", r.typ.String(), doc.ID, errors.ErrAlreadyExists)
	}
	return doc, nil
}

// Update replaces the body of row id with the fields of p.
func (r *Repository) Update(ctx context.Context, id string, p pages.Page) (pages.Page, error) {
	doc, err := r.document(p, id)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, errors.WrapParse("json", id, err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE pages SET body = ? WHERE type = ? AND id = ?`,
		string(body), r.typ.String(), id)
	if err != nil {
		return nil, errors.WrapIO("update", r.typ.String()+"/"+id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.NewNotFoundError(r.typ.String(), id)
	}
	return doc, nil
}

// Destroy deletes row id.
func (r *Repository) Destroy(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE type = ? AND id = ?`, r.typ.String(), id)
	if err != nil {
		return errors.WrapIO("delete", r.typ.String()+"/"+id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError(r.typ.String(), id)
	}
	return nil
}

// document flattens p into a Document of the repository's type. A non-empty
// id overrides the page's own.
func (r *Repository) document(p pages.Page, id string) (*pages.Document, error) {
	if !pages.Is(p, r.typ) {
		return nil, errors.NewValidationError("type", typeName(p), "repository stores "+r.typ.String())
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, errors.WrapParse("json", r.typ.String(), err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.WrapParse("json", r.typ.String(), err)
	}
	return pages.DocumentFromMap(r.typ, id, m), nil
}

func typeName(p pages.Page) string {
	if p == nil {
		return "<nil>"
	}
	return p.PageType().String()
}

func (r *Repository) decode(id, body string) (pages.Page, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, errors.WrapParse("json", r.typ.String()+"/"+id, err)
	}
	return pages.DocumentFromMap(r.typ, id, m), nil
}
