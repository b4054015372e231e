// internal/app/system/backend/client.go
package backend

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxBody caps JSON responses; downloads have their own limit.
const maxBody = 8 << 20

// Client talks JSON to the remote admin API. The zero value is not usable;
// call New. A Client is safe for concurrent use. WithToken returns an
// authenticated copy that shares the transport.
type Client struct {
	base    *url.URL
	hc      *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its transport is used as-is,
// without tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout bounds each JSON call. Calls whose context already has an
// earlier deadline keep it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the API rooted at baseURL
// (for example "https://api.example.com/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend: base url %q must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("backend: base url %q has no host", baseURL)
	}
	u.RawQuery, u.Fragment = "", ""
	c := &Client{
		base: u,
		hc:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

// WithToken returns a copy of c that sends token as a bearer credential.
// An empty token returns c unchanged.
func (c *Client) WithToken(token string) *Client {
	token = strings.TrimSpace(token)
	if token == "" {
		return c
	}
	base := c.hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cp := *c
	hc := *c.hc
	hc.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   base,
	}
	cp.hc = &hc
	return &cp
}

// Get issues GET path?params and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.json(ctx, http.MethodGet, path, params, nil)
}

// Post issues POST path with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.json(ctx, http.MethodPost, path, nil, body)
}

// Patch issues PATCH path with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.json(ctx, http.MethodPatch, path, nil, body)
}

// Delete issues DELETE path; body may be nil.
func (c *Client) Delete(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.json(ctx, http.MethodDelete, path, nil, body)
}

func (c *Client) json(ctx context.Context, method, path string, params url.Values, body any) (json.RawMessage, error) {
	if c.timeout > 0 {
		if dl, ok := ctx.Deadline(); !ok || time.Until(dl) > c.timeout {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}
	resp, err := c.send(ctx, method, path, params, body, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: messageFromBody(resp.StatusCode, data), Method: method, Path: path}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}

// send builds and issues the request. The caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, params url.Values, body any, accept string) (*http.Response, error) {
	u := c.resolve(path, params)

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// resolve joins path, which callers have already escaped, onto the base URL.
func (c *Client) resolve(path string, params url.Values) string {
	s := strings.TrimRight(c.base.String(), "/") + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		s += "?" + params.Encode()
	}
	return s
}
