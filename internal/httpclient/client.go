// Package httpclient is the JSON transport shared by the application API
// clients.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/goliatone/go-applyform/internal/httpclient"

// StatusError is returned for non-2xx responses. Body holds at most the
// first 4KiB of the response and is never shown to users.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Observer receives the latency of every request, keyed by operation.
type Observer func(operation string, status int, elapsed time.Duration)

// Client sends JSON requests relative to a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
	observe    Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// WithObserver records request latencies.
func WithObserver(fn Observer) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New creates a client rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		header:     http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Request describes one API call. Path is appended to the base URL.
type Request struct {
	Operation   string
	Method      string
	Path        string
	ContentType string
	Body        io.Reader
}

// Do sends req and decodes a JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "api."+req.Operation)
	defer span.End()

	endpoint := c.baseURL + req.Path
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.url", endpoint),
	)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, req.Body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.record(req.Operation, 0, started)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("%s %s: %w", req.Method, endpoint, err)
	}
	defer resp.Body.Close()
	c.record(req.Operation, resp.StatusCode, started)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return &StatusError{Method: req.Method, URL: endpoint, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// JSONBody encodes payload for a request body.
func JSONBody(payload any) (io.Reader, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return strings.NewReader(string(raw)), nil
}

func (c *Client) record(operation string, status int, started time.Time) {
	if c.observe != nil {
		c.observe(operation, status, time.Since(started))
	}
}
