package files_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast/internal/sources/files"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
)

var article = pages.NewType("article")

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRead(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "article", "hello.yaml"), "title: Hello\nrank: 2\n")
	write(t, filepath.Join(root, "article", "json.json"), `{"id":"ignored","title":"From JSON"}`)
	write(t, filepath.Join(root, "article", "broken.yml"), "title: [\n")

	repo := files.New(root, article)

	p, err := repo.Read(context.Background(), "hello")
	require.NoError(t, err)
	doc := p.(*pages.Document)
	assert.Equal(t, "hello", doc.ID)
	assert.Equal(t, article, doc.PageType())
	assert.Equal(t, "Hello", doc.Fields["title"])

	p, err = repo.Read(context.Background(), "json")
	require.NoError(t, err)
	assert.Equal(t, "json", p.(*pages.Document).ID, "file name wins over the id key")

	_, err = repo.Read(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))

	_, err = repo.Read(context.Background(), "../secret")
	assert.True(t, errors.IsValidationError(err))

	_, err = repo.Read(context.Background(), "broken")
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestList(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "article", "b.yaml"), "title: B\n")
	write(t, filepath.Join(root, "article", "a.json"), `{"title":"A"}`)
	write(t, filepath.Join(root, "article", "notes.txt"), "skip me")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "article", "nested"), 0o755))

	ps, err := files.New(root, article).List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "a", ps[0].(*pages.Document).ID)
	assert.Equal(t, "b", ps[1].(*pages.Document).ID)

	ps, err = files.New(root, pages.NewType("author")).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ps)
	assert.Empty(t, ps)
}

func TestVersionedType(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "author", "v2", "ada.yaml"), "name: Ada\n")

	p, err := files.New(root, pages.NewVersionedType("author", "v2")).Read(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.(*pages.Document).Fields["name"])
}
