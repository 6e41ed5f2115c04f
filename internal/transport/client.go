// Package transport is the HTTP client used by remote page sources.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/pagecast/pkg/errors"
)

// DefaultHTTPTimeout bounds a single request.
var DefaultHTTPTimeout = 30 * time.Second

// Client performs authenticated JSON requests.
type Client struct {
	http   *http.Client
	auth   Authenticator
	secret string
	name   string
}

// New creates a client. name labels API errors; an empty secret disables
// authentication.
func New(name string, auth Authenticator, secret string) *Client {
	if auth == nil {
		auth = NoAuth{}
	}
	return &Client{
		http:   &http.Client{Timeout: DefaultHTTPTimeout},
		auth:   auth,
		secret: secret,
		name:   name,
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// Do performs req with authentication and JSON headers applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.secret != "" {
		c.auth.Apply(req, c.secret)
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// GetJSON performs a GET and decodes a 200 response into target.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapResource("create", "request", "GET "+url, err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return &errors.APIError{Source: c.name, Endpoint: url, Message: "request failed", Err: err}
	}
	return c.decode(resp, url, target)
}

func (c *Client) decode(resp *http.Response, url string, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{
			Source:     c.name,
			StatusCode: resp.StatusCode,
			Endpoint:   url,
			Message:    string(body),
		}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", url, err)
	}
	return nil
}
