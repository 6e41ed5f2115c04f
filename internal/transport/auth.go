package transport

import "net/http"

// Authenticator applies a credential to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, secret string)
}

// NoAuth applies nothing.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(*http.Request, string) {}

// BearerAuth sets "Authorization: Bearer <secret>".
type BearerAuth struct{}

// Apply implements Authenticator.
func (BearerAuth) Apply(req *http.Request, secret string) {
	req.Header.Set("Authorization", "Bearer "+secret)
}

// HeaderAuth sets a custom header to the secret.
type HeaderAuth struct {
	Header string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(req *http.Request, secret string) {
	req.Header.Set(a.Header, secret)
}

// QueryAuth passes the secret as a query parameter.
type QueryAuth struct {
	Param string
}

// Apply implements Authenticator.
func (a QueryAuth) Apply(req *http.Request, secret string) {
	if req.URL == nil {
		return
	}
	q := req.URL.Query()
	q.Set(a.Param, secret)
	req.URL.RawQuery = q.Encode()
}

// AuthFor picks an Authenticator from a header name. An empty name or
// "Authorization" means bearer; "?param" means a query parameter.
func AuthFor(header string) Authenticator {
	switch {
	case header == "" || http.CanonicalHeaderKey(header) == "Authorization":
		return BearerAuth{}
	case header[0] == '?':
		return QueryAuth{Param: header[1:]}
	}
	return HeaderAuth{Header: header}
}
