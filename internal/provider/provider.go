// Package provider contains the outbound adapters that turn a canonical
// tracked event into provider-specific Conversions API calls.
//
// Every adapter call is wrapped so that an HTTP failure is captured as a
// structured Result instead of propagating: the ingest fan-out waits for
// all dispatches to settle and must never let one provider's outage fail
// the others or the client-facing response.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result describes one settled provider dispatch, success or captured
// failure. Err is operator-facing only; it is logged, never returned to
// the tracking client.
type Result struct {
	Provider   string
	Target     string // pixel id, measurement id, or pixel code
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Client is the HTTP dispatcher shared by all adapters. The underlying
// http.Client is reused for connection pooling across dispatches.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*clientConfig)

// WithTimeout sets the per-call timeout. Default is 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client, for proxies or testing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates the shared dispatcher.
func NewClient(opts ...Option) *Client {
	cfg := &clientConfig{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{http: cfg.httpClient, timeout: cfg.timeout}
}

// postJSON performs one JSON POST and returns the status code. Non-2xx
// responses and transport failures come back as errors carrying a short
// response snippet for the logs.
func (c *Client) postJSON(ctx context.Context, rawurl string, headers map[string]string, body any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, rawurl, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 64KB cap keeps a hostile response from exhausting memory.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		msg := strings.ReplaceAll(string(snippet), "\n", " ")
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return resp.StatusCode, nil
}
