// Package client implements the HTTP resource client the rest of the kit
// talks to the ERP backend through. It owns request serialization, session
// cookie handling, and the translation of failures into the error taxonomy
// consumed by the mutation and query layers: HTTPError for rejected
// requests, NetworkError when no response arrived at all.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const defaultUserAgent = "erpkit/1.0"

// Client issues JSON requests against a REST-ish API rooted at a base URL.
// Paths follow the /api/<module>/<resource>[/<id>] convention; methods map
// conventionally (GET list/detail, POST create, PATCH partial update,
// PUT replace, DELETE remove).
type Client struct {
	base      *url.URL
	http      *http.Client
	log       *slog.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying transport. Useful for tests
// and for deployments that configure transport-level timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a structured logger. Requests log at debug level.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client for the API rooted at baseURL. The default transport
// carries a cookie jar so session-based authentication survives across
// requests made through the same client.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client: cookie jar: %w", err)
	}

	c := &Client{
		base:      base,
		http:      &http.Client{Jar: jar},
		log:       slog.Default(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do issues a single request. A non-nil body is serialized as JSON. The
// response is returned only for 2xx statuses; any other received status is
// drained and converted into an *HTTPError, and a transport-level failure
// into a *NetworkError. Callers own the returned body and must close it.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("issuing request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		httpErr := &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
		c.log.Warn("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return nil, httpErr
	}

	return resp, nil
}

// JSON issues a request and decodes the response body into out. A nil out
// discards the body, which covers DELETE responses with no useful payload.
func (c *Client) JSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response from %s %s: %w", method, path, err)
	}
	return nil
}

// JSONAs issues a request and decodes the response into a value of type T.
func JSONAs[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	if err := c.JSON(ctx, method, path, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// resolve joins a server-relative path onto the configured base URL.
func (c *Client) resolve(path string) string {
	ref := &url.URL{Path: path}
	if !strings.HasPrefix(path, "/") {
		ref.Path = "/" + path
	}
	return c.base.ResolveReference(ref).String()
}
