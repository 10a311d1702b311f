// Package apiclient issues the HTTP calls made against the authentication
// backend and normalizes every reply into an Outcome.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// API endpoint constants
const (
	healthEndpoint         = "/health"
	registerEndpoint       = "/auth/register"
	loginEndpoint          = "/auth/login"
	meEndpoint             = "/auth/me"
	forgotPasswordEndpoint = "/auth/forgot-password"
	resetPasswordEndpoint  = "/auth/reset-password"
)

// HTTP constants
const (
	contentTypeJSON = "application/json"
	apiPathSuffix   = "/api"
	maxBodyBytes    = 1 << 20
)

// Default per-call timeouts.
const (
	DefaultHealthTimeout  = 10 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)

// Timeouts holds the timeout of each call class.
type Timeouts struct {
	// Health applies to the health check and the CORS preflight.
	Health time.Duration
	// Request applies to every business call.
	Request time.Duration
}

// DialContextFunc opens the network connection for a request.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Option configures a Client.
type Option func(*Client)

// WithDialer routes every connection through dial, e.g. an SSH tunnel.
func WithDialer(dial DialContextFunc) Option {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = dial
		transport.Proxy = nil
		c.httpClient = &http.Client{Transport: transport}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to the backend's API.
type Client struct {
	baseURL    string
	rootURL    string
	timeouts   Timeouts
	httpClient *http.Client
}

// Request describes a single call.
type Request struct {
	Method  string
	Path    string
	Body    any
	Headers RequestHeaders
	Timeout time.Duration
	// Root resolves Path against the server root instead of the API base.
	Root bool
}

// NewClient creates a client for the API mounted at baseURL, e.g.
// http://localhost:3001/api. The server root is baseURL without its trailing
// /api segment.
func NewClient(baseURL string, timeouts Timeouts, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if timeouts.Health <= 0 {
		timeouts.Health = DefaultHealthTimeout
	}
	if timeouts.Request <= 0 {
		timeouts.Request = DefaultRequestTimeout
	}

	base := strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL:    base,
		rootURL:    strings.TrimSuffix(base, apiPathSuffix),
		timeouts:   timeouts,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeouts returns the effective per-call timeouts.
func (c *Client) Timeouts() Timeouts {
	return c.timeouts
}

// URL returns the absolute URL a request would be sent to.
func (c *Client) URL(req Request) string {
	if req.Root {
		return c.rootURL + req.Path
	}
	return c.baseURL + req.Path
}

// Do sends req and classifies the result. It never returns nil.
func (c *Client) Do(ctx context.Context, req Request) Outcome {
	target := c.URL(req)

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := sonic.ConfigStd.Marshal(req.Body)
		if err != nil {
			return &TransportError{Method: req.Method, URL: target, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return &TransportError{Method: req.Method, URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Headers.apply(httpReq.Header)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Method: req.Method, URL: target, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return decode(resp, raw)
}

func decode(resp *http.Response, raw []byte) Outcome {
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), contentTypeJSON) {
		return &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       map[string]any{"error": string(raw)},
		}
	}

	var parsed any
	if err := sonic.ConfigStd.Unmarshal(raw, &parsed); err != nil {
		return &DecodeError{StatusCode: resp.StatusCode, Header: resp.Header, Raw: string(raw), Err: err}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: parsed}
}

// Health calls GET /health on the server root.
func (c *Client) Health(ctx context.Context) Outcome {
	return c.Do(ctx, Request{
		Method:  http.MethodGet,
		Path:    healthEndpoint,
		Timeout: c.timeouts.Health,
		Root:    true,
	})
}

// Register calls POST /auth/register.
func (c *Client) Register(ctx context.Context, name, email, password string) Outcome {
	return c.postJSON(ctx, registerEndpoint, map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) Outcome {
	return c.postJSON(ctx, loginEndpoint, map[string]any{
		"email":    email,
		"password": password,
	})
}

// Me calls GET /auth/me. An empty token sends no Authorization header.
func (c *Client) Me(ctx context.Context, token string) Outcome {
	headers := JSONHeaders()
	if token != "" {
		headers = headers.WithBearer(token)
	}
	return c.Do(ctx, Request{
		Method:  http.MethodGet,
		Path:    meEndpoint,
		Headers: headers,
		Timeout: c.timeouts.Request,
	})
}

// ForgotPassword calls POST /auth/forgot-password.
func (c *Client) ForgotPassword(ctx context.Context, email string) Outcome {
	return c.postJSON(ctx, forgotPasswordEndpoint, map[string]any{"email": email})
}

// ResetPassword calls POST /auth/reset-password with payload as given.
func (c *Client) ResetPassword(ctx context.Context, payload map[string]any) Outcome {
	if payload == nil {
		payload = map[string]any{}
	}
	return c.postJSON(ctx, resetPasswordEndpoint, payload)
}

// Preflight sends a CORS preflight for a POST to /auth/login.
func (c *Client) Preflight(ctx context.Context, origin string) Outcome {
	return c.Do(ctx, Request{
		Method:  http.MethodOptions,
		Path:    loginEndpoint,
		Headers: PreflightHeaders(origin, http.MethodPost, "Content-Type"),
		Timeout: c.timeouts.Health,
	})
}

func (c *Client) postJSON(ctx context.Context, path string, body any) Outcome {
	return c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    path,
		Body:    body,
		Headers: JSONHeaders(),
		Timeout: c.timeouts.Request,
	})
}
