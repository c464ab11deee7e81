package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error is a non-2xx response from the backend. Message is the server's
// human-readable error field when the body parsed as JSON, otherwise a generic
// message carrying the numeric status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrUnauthenticated is returned for every 401. It is terminal for the call —
// callers must not retry; the auth-failed hook has already fired.
var ErrUnauthenticated = &Error{Status: http.StatusUnauthorized, Message: "authentication failed"}

// Params is a query-parameter map. Nil values are omitted from the URL; all
// other values are stringified with %v and percent-encoded.
type Params map[string]any

// Client issues every backend request: it builds the URL, encodes the body,
// carries the session cookie, and maps responses to typed results or errors.
// It is stateless beyond the base URL and cookie jar and safe for concurrent
// use. One attempt per call — no retry, no backoff.
type Client struct {
	baseURL string
	http    *http.Client

	// authFailed fires once per 401 received on a non-login path, standing in
	// for the browser's redirect to /login. May be nil.
	authFailed func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport, primarily for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAuthFailedHook registers fn to run when any call comes back 401.
func WithAuthFailedHook(fn func()) Option {
	return func(c *Client) { c.authFailed = fn }
}

// New returns a Client rooted at baseURL (the fixed API prefix is appended by
// the per-resource methods, not here).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// rawBody marks a request body that must pass through unmodified, with the
// caller-supplied content type (multipart uploads). A JSON content type is not
// forced for these.
type rawBody struct {
	r           io.Reader
	contentType string
}

// RawBody wraps a pre-encoded body (e.g. multipart form data) so do leaves
// encoding and Content-Type to the caller.
func RawBody(r io.Reader, contentType string) any {
	return rawBody{r: r, contentType: contentType}
}

// get/post/put/patch/del are thin method-fixing wrappers over do, mirroring
// the one-operation-one-call shape of the resource files.
func (c *Client) get(ctx context.Context, path string, params Params, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) del(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// do executes a single request against path (relative to the base URL).
// Query params with nil values are dropped; the separator respects an
// existing query string in path. A non-raw body is JSON-encoded. JSON
// responses are decoded into out; anything else is returned as text when out
// is a *string.
func (c *Client) do(ctx context.Context, method, path string, params Params, body, out any) error {
	full := c.baseURL + path
	if qs := encodeParams(params); qs != "" {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + qs
	}

	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case rawBody:
		reader = b.r
		contentType = b.contentType
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, full, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		slog.Debug("request failed", "method", method, "url", full, "error", err)
		return fmt.Errorf("request to %s failed: %w", full, err)
	}
	defer res.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		// Mirrors the browser redirect to /login: fire the hook unless the
		// failing call was itself part of the login flow.
		if c.authFailed != nil && !isLoginPath(path) {
			c.authFailed()
		}
		return ErrUnauthenticated
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &Error{Status: res.StatusCode, Message: errorMessage(res.StatusCode, data)}
	}

	if out == nil {
		return nil
	}
	if isJSON(res.Header.Get("Content-Type")) {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	return fmt.Errorf("unexpected content type %q for %s %s", res.Header.Get("Content-Type"), method, path)
}

// encodeParams renders params as a query string, dropping nil values and
// stringifying the rest. Keys are encoded in sorted order by url.Values.
func encodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}
	q := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		q.Set(k, fmt.Sprintf("%v", v))
	}
	return q.Encode()
}

// errorMessage extracts the server's error field, falling back to a generic
// message that includes the status code.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("HTTP error, status %d", status)
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

// isLoginPath guards against an auth-failed loop: a 401 from the login
// endpoints themselves must not re-trigger the hook.
func isLoginPath(path string) bool {
	return strings.HasPrefix(path, "/auth/login")
}
