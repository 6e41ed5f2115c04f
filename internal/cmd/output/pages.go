package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
)

// identity columns lead every page table.
var identity = []string{"type", "id"}

// PagesToTableData lays pages out one per row. Columns are the union of
// the pages' JSON keys with type and id first and the rest sorted.
func PagesToTableData(ps []pages.Page) (Data, error) {
	objects := make([]map[string]any, 0, len(ps))
	keys := map[string]bool{}
	for _, p := range ps {
		m, err := pageObject(p)
		if err != nil {
			return Data{}, err
		}
		for k := range m {
			keys[k] = true
		}
		objects = append(objects, m)
	}

	var rest []string
	for k := range keys {
		if !slices.Contains(identity, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	columns := append(slices.Clone(identity), rest...)

	data := Data{Headers: make([]string, len(columns))}
	for i, c := range columns {
		data.Headers[i] = Title(strings.ReplaceAll(c, "_", " "))
	}
	for _, m := range objects {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = cell(m[c])
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

// RegistrationsToTableData lists registrations in source order.
func RegistrationsToTableData(regs []registration.Registration) Data {
	data := Data{
		Headers:         []string{"Type", "Shape", "Repository"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft},
	}
	for _, r := range registration.Describe(regs) {
		data.Rows = append(data.Rows, []string{r.DataType, r.Shape, r.Repository})
	}
	return data
}

// WritePages formats ps for the given format. Table formats get one row
// per page; structured formats get the pages themselves.
func WritePages(w io.Writer, format Format, ps []pages.Page) error {
	switch format {
	case FormatTable, FormatWide, "":
		data, err := PagesToTableData(ps)
		if err != nil {
			return err
		}
		return NewFormatter(format).Format(w, data)
	default:
		return NewFormatter(format).Format(w, ps)
	}
}

// pageObject renders a page as a JSON object. A page whose encoding is not
// an object is kept under "value".
func pageObject(p pages.Page) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding %s page: %w", p.PageType(), err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		m = map[string]any{"value": string(raw)}
	}
	if _, ok := m["type"]; !ok {
		m["type"] = p.PageType().String()
	}
	return m, nil
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
