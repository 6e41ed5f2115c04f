package pages

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// Document is a schemaless page. Sources that load pages from files, HTTP
// or a database produce Documents.
type Document struct {
	Type   Type
	ID     string
	Fields map[string]any
}

var _ interface {
	Page
	FieldValuer
} = (*Document)(nil)

// NewDocument returns a Document with a copy of fields.
func NewDocument(t Type, id string, fields map[string]any) *Document {
	f := make(map[string]any, len(fields))
	maps.Copy(f, fields)
	return &Document{Type: t, ID: id, Fields: f}
}

// PageType implements Page.
func (d *Document) PageType() Type {
	return d.Type
}

// Field implements FieldValuer. The keys "id" and "type" resolve to the
// document's identity unless Fields overrides them.
func (d *Document) Field(key string) (any, bool) {
	if v, ok := d.Fields[key]; ok {
		return v, true
	}
	switch key {
	case "id":
		return d.ID, true
	case "type":
		return d.Type.String(), true
	}
	return nil, false
}

// MarshalJSON inlines the fields next to the identity keys.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.flatten())
}

// MarshalYAML inlines the fields next to the identity keys.
func (d *Document) MarshalYAML() (any, error) {
	return d.flatten(), nil
}

func (d *Document) flatten() map[string]any {
	out := make(map[string]any, len(d.Fields)+2)
	maps.Copy(out, d.Fields)
	out["type"] = d.Type.String()
	out["id"] = d.ID
	return out
}

// DocumentFromMap builds a Document from a decoded object. The "id" key is
// lifted out of the fields and rendered as a string, so a numeric id of 7
// becomes "7". A "type" key is dropped in favour of t.
func DocumentFromMap(t Type, id string, m map[string]any) *Document {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case "id":
			if id == "" {
				id = idString(v)
			}
		case "type":
		default:
			fields[k] = v
		}
	}
	return &Document{Type: t, ID: id, Fields: fields}
}

func idString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
