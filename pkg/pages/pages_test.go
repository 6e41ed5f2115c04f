package pages_test

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast/pkg/pages"
)

var (
	article = pages.NewType("article")
	author  = pages.NewVersionedType("author", "v2")
)

type Article struct {
	Slug  string `json:"slug"`
	Title string
	Tags  []string `json:"tags"`
	views int
}

func (Article) PageType() pages.Type { return article }

func TestType(t *testing.T) {
	assert.Equal(t, "article", article.String())
	assert.Equal(t, "author/v2", author.String())
	assert.True(t, pages.Type{}.IsZero())
	assert.NotEqual(t, pages.NewType("author"), author)

	t.Run("parse", func(t *testing.T) {
		got, err := pages.TypeFromString("author/v2")
		require.NoError(t, err)
		assert.Equal(t, author, got)

		got, err = pages.TypeFromString(" article ")
		require.NoError(t, err)
		assert.Equal(t, article, got)

		_, err = pages.TypeFromString("")
		assert.Error(t, err)
		_, err = pages.TypeFromString("a/b/c")
		assert.Error(t, err)
	})
}

func TestIs(t *testing.T) {
	assert.True(t, pages.Is(Article{}, article))
	assert.False(t, pages.Is(Article{}, author))
	assert.False(t, pages.Is(nil, article))

	assert.True(t, pages.AllOf(nil, article))
	assert.True(t, pages.AllOf([]pages.Page{Article{}, &Article{}}, article))
	assert.False(t, pages.AllOf([]pages.Page{Article{}, pages.NewDocument(author, "1", nil)}, article))
}

func TestFieldOf(t *testing.T) {
	a := &Article{Slug: "hello", Title: "Hello", views: 3}

	tests := []struct {
		key   string
		want  any
		found bool
	}{
		{"Slug", "hello", true},
		{"slug", "hello", true},
		{"Title", "Hello", true},
		{"title", "Hello", true},
		{"views", nil, false},
		{"missing", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := pages.FieldOf(a, tt.key)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("document", func(t *testing.T) {
		d := pages.NewDocument(article, "42", map[string]any{"slug": "doc"})
		v, ok := pages.FieldOf(d, "slug")
		assert.True(t, ok)
		assert.Equal(t, "doc", v)

		v, ok = pages.FieldOf(d, "id")
		assert.True(t, ok)
		assert.Equal(t, "42", v)
	})
}

func TestFieldEquals(t *testing.T) {
	a := Article{Slug: "hello", Tags: []string{"go"}}

	assert.True(t, pages.FieldEquals(a, "slug", "hello"))
	assert.False(t, pages.FieldEquals(a, "slug", "other"))
	assert.False(t, pages.FieldEquals(a, "missing", "hello"))
	// incomparable values never match, even against themselves
	assert.False(t, pages.FieldEquals(a, "tags", []string{"go"}))

	d := pages.NewDocument(article, "1", map[string]any{"rank": 1, "draft": nil})
	assert.True(t, pages.FieldEquals(d, "rank", 1))
	assert.False(t, pages.FieldEquals(d, "rank", int64(1)))
	assert.True(t, pages.FieldEquals(d, "draft", nil))
}

func TestDocumentEncoding(t *testing.T) {
	d := pages.NewDocument(author, "ada", map[string]any{"name": "Ada"})

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"author/v2","id":"ada","name":"Ada"}`, string(b))

	y, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(y), "name: Ada")
	assert.Contains(t, string(y), "type: author/v2")
}

func TestDocumentFromMap(t *testing.T) {
	d := pages.DocumentFromMap(article, "", map[string]any{"id": "7", "type": "ignored", "title": "T"})
	assert.Equal(t, "7", d.ID)
	assert.Equal(t, article, d.PageType())
	assert.Equal(t, map[string]any{"title": "T"}, d.Fields)

	d = pages.DocumentFromMap(article, "file-id", map[string]any{"id": "7"})
	assert.Equal(t, "file-id", d.ID)
}

func TestDocumentFromMapNumericID(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"title":"A"}`), &m))

	d := pages.DocumentFromMap(article, "", m)
	assert.Equal(t, "7", d.ID)
	assert.Equal(t, map[string]any{"title": "A"}, d.Fields)
	assert.True(t, pages.FieldEquals(d, "id", "7"))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"article","id":"7","title":"A"}`, string(b))

	tests := []struct {
		name string
		id   any
		want string
	}{
		{"large float", float64(1234567890), "1234567890"},
		{"fraction", 1.5, "1.5"},
		{"json number", json.Number("42"), "42"},
		{"int", 9, "9"},
		{"bool", true, "true"},
		{"null", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := pages.DocumentFromMap(article, "", map[string]any{"id": tt.id})
			assert.Equal(t, tt.want, d.ID)
			assert.Empty(t, d.Fields)
		})
	}
}
