package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/digicoders-git/ksadmin/pkg/domain"
)

// Client is the KS Medial admin API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type options struct {
	timeout        time.Duration
	base           http.RoundTripper
	limiter        *rate.Limiter
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport replaces the innermost transport (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// WithRateLimit paces requests to r per second with the given burst.
// A zero r disables pacing.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *options) {
		if r <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(r, burst)
	}
}

// WithUnauthorizedHandler registers fn to run when an authenticated request
// is rejected with 401. It runs on the request goroutine.
func WithUnauthorizedHandler(fn func()) Option {
	return func(o *options) { o.onUnauthorized = fn }
}

// New creates a new API client. The bearer token is read from tokens on every
// request.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	o := options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	rt := o.base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if o.limiter != nil {
		rt = &limitTransport{limiter: o.limiter, base: rt}
	}
	rt = NewBearerTransport(tokens, apiHost(baseURL), rt)
	if o.onUnauthorized != nil {
		rt = &unauthorizedTransport{tokens: tokens, onUnauthorized: o.onUnauthorized, base: rt}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: rt,
		},
	}
}

// apiHost is the host the bearer token is scoped to.
func apiHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

// Login exchanges credentials for an identity and token.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	req := domain.LoginRequest{Identifier: identifier, Secret: secret}
	if err := c.post(ctx, "/api/admin/login", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if resp.Token == "" || resp.Profile.SubjectID == "" {
		return nil, fmt.Errorf("client.Login: %w", ErrMalformedLogin)
	}
	return &resp, nil
}

// GetMe returns the authenticated admin's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.get(ctx, "/api/admin/me", &p); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &p, nil
}

// Summary returns the dashboard counters.
func (c *Client) Summary(ctx context.Context) (map[string]any, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/admin/dashboard", &raw); err != nil {
		return nil, fmt.Errorf("client.Summary: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(unwrap(raw), &out); err != nil {
		return nil, fmt.Errorf("client.Summary: decode response: %w", err)
	}
	return out, nil
}

// List fetches every record from a list endpoint. The endpoint may answer with
// a bare array or an object wrapping it in "data", "items" or "results".
func (c *Client) List(ctx context.Context, endpoint string) ([]domain.Record, error) {
	var raw json.RawMessage
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("client.List: %w", err)
	}
	var records []domain.Record
	if err := json.Unmarshal(unwrap(raw), &records); err != nil {
		return nil, fmt.Errorf("client.List: decode response: %w", err)
	}
	return records, nil
}

// unwrap strips a {"data": ...} style envelope.
func unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env map[string]json.RawMessage
	if json.Unmarshal(trimmed, &env) != nil {
		return trimmed
	}
	for _, k := range []string{"data", "items", "results"} {
		if v, ok := env[k]; ok {
			return unwrap(v)
		}
	}
	return trimmed
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
