package client

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// TokenSource yields the current bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// bearerTransport sets the Authorization header from a TokenSource read at
// dispatch time, so logins and logouts after construction take effect.
type bearerTransport struct {
	tokens TokenSource
	host   string
	base   http.RoundTripper
}

// NewBearerTransport wraps base (http.DefaultTransport when nil). The token is
// only attached to requests for host, so a redirect to another host never
// carries it; an empty host attaches it everywhere. With no current token the
// request goes out without an Authorization header.
func NewBearerTransport(tokens TokenSource, host string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &bearerTransport{tokens: tokens, host: host, base: base}
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Del("Authorization")
	if tok := bearer(t.tokens); tok != "" && (t.host == "" || strings.EqualFold(r.URL.Host, t.host)) {
		r.Header.Set("Authorization", tok)
	}
	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(r)
}

// bearer returns the Authorization value for the current token, or "".
func bearer(tokens TokenSource) string {
	if tokens == nil {
		return ""
	}
	if tok := tokens.Token(); tok != "" {
		return "Bearer " + tok
	}
	return ""
}

// unauthorizedTransport calls onUnauthorized for 401 replies to requests that
// were sent with the still-current token. A 401 for a token replaced while
// the request was in flight is left alone.
type unauthorizedTransport struct {
	tokens         TokenSource
	onUnauthorized func()
	base           http.RoundTripper
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || resp.Request == nil {
		return resp, nil
	}
	if sent := resp.Request.Header.Get("Authorization"); sent != "" && sent == bearer(t.tokens) {
		t.onUnauthorized()
	}
	return resp, nil
}

// limitTransport paces outgoing requests.
type limitTransport struct {
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
