package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast/pkg/errors"
)

func TestAuthenticators(t *testing.T) {
	newReq := func() *http.Request {
		u, _ := url.Parse("https://example.com/pages?x=1")
		return &http.Request{Header: make(http.Header), URL: u}
	}

	req := newReq()
	NoAuth{}.Apply(req, "secret")
	if len(req.Header) != 0 {
		t.Errorf("expected no headers, got %d", len(req.Header))
	}

	req = newReq()
	AuthFor("").Apply(req, "secret")
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("expected bearer header, got %q", got)
	}

	req = newReq()
	AuthFor("X-Api-Key").Apply(req, "secret")
	if got := req.Header.Get("X-Api-Key"); got != "secret" {
		t.Errorf("expected x-api-key header, got %q", got)
	}

	req = newReq()
	AuthFor("?key").Apply(req, "secret")
	if got := req.URL.Query().Get("key"); got != "secret" {
		t.Errorf("expected key query param, got %q", got)
	}
	if got := req.URL.Query().Get("x"); got != "1" {
		t.Errorf("existing query params lost, got %q", got)
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`{"id":"1"}`))
		case "/bad":
			_, _ = w.Write([]byte(`{`))
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New("remote", BearerAuth{}, "tok")

	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/ok", &out))
	assert.Equal(t, "1", out["id"])

	err := c.GetJSON(context.Background(), srv.URL+"/nope", &out)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, errors.IsNotFound(err))

	err = c.GetJSON(context.Background(), srv.URL+"/bad", &out)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
