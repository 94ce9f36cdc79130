// Package kinto is a small client for the Remote Settings (Kinto) HTTP API,
// covering what the lambdas need: server capabilities, collection metadata,
// records, changesets, batch writes and attachments.
package kinto

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is matched by API errors with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.Status, body)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

const defaultUserAgent = "remote-settings-lambdas"

// DefaultBatchMaxRequests is used when the server does not advertise
// settings.batch_max_requests.
const DefaultBatchMaxRequests = 25

// Client talks to one Remote Settings server.
type Client struct {
	base      *url.URL
	http      *http.Client
	auth      string
	userAgent string

	batchMu  sync.Mutex
	batchMax int
}

// Option configures a Client.
type Option func(*Client)

// WithAuth sets credentials: "user:password" for Basic auth, or a full
// header value such as "Bearer <token>".
func WithAuth(auth string) Option {
	return func(c *Client) { c.auth = AuthorizationHeader(auth) }
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// UserAgent returns the User-Agent sent on behalf of command.
func UserAgent(command string) string {
	return defaultUserAgent + "/" + command
}

// New creates a client for the server root URL, e.g. "https://host/v1".
func New(server string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return nil, fmt.Errorf("kinto: server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("kinto: server url %q: unsupported scheme", server)
	}

	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: 60 * time.Second},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Server returns the server root URL.
func (c *Client) Server() string {
	return c.base.String()
}

// AuthorizationHeader turns an AUTH setting into an Authorization header value.
// Values containing a space are assumed to already carry a scheme.
func AuthorizationHeader(auth string) string {
	switch {
	case auth == "":
		return ""
	case strings.Contains(auth, " "):
		return auth
	default:
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(auth))
	}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}
	return req, nil
}

// do sends req and decodes a JSON body into out (unless nil). It returns the
// response headers for pagination.
func (c *Client) do(req *http.Request, out any) (http.Header, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("%s %s: decode: %w", req.Method, req.URL, err)
		}
	}
	return resp.Header, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, c.endpoint(path, nil), body, contentType)
	if err != nil {
		return err
	}
	_, err = c.do(req, out)
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(path, query), nil, "")
	if err != nil {
		return nil, err
	}
	return c.do(req, out)
}
