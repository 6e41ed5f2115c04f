package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast/internal/sources/remote"
	"github.com/agentstation/pagecast/internal/transport"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
)

func TestRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /article/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Hello"}`))
	})
	mux.HandleFunc("GET /article", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a","title":"A"},{"id":"b","title":"B"}]`))
	})
	mux.HandleFunc("GET /author/v2/ada", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Ada"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := transport.New("api", transport.NoAuth{}, "")
	article := pages.NewType("article")
	repo := remote.New(srv.URL+"/", article, client)

	p, err := repo.Read(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, pages.NewDocument(article, "hello", map[string]any{"title": "Hello"}), p)

	ps, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "b", ps[1].(*pages.Document).ID)

	_, err = repo.Read(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))

	p, err = remote.New(srv.URL, pages.NewVersionedType("author", "v2"), client).Read(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.(*pages.Document).Fields["name"])
}
