// Package api is the HTTP client for the CropGuard backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8000"

const (
	defaultTimeout        = 30 * time.Second
	defaultPredictTimeout = 60 * time.Second
)

// Credentials is the source of the bearer token. The client reads the token
// on every request and calls Clear when the backend answers 401.
type Credentials interface {
	Token() string
	Clear() error
}

// Client talks to the CropGuard API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	predictTimeout time.Duration
	creds          Credentials
	metrics        *Metrics
	logger         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the deadline applied to every call except Predict.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPredictTimeout sets the deadline applied to image uploads.
func WithPredictTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.predictTimeout = d
		}
	}
}

// WithCredentials attaches a token source.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger replaces the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{},
		timeout:        defaultTimeout,
		predictTimeout: defaultPredictTimeout,
		logger:         log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one call to the backend.
type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	timeout     time.Duration
}

// do sends r and decodes a 2xx JSON body into out (which may be nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	timeout := r.timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(r.op, "error", elapsed)
		c.logger.Debug().Err(err).Str("op", r.op).Str("request_id", reqID).Dur("elapsed", elapsed).Msg("request failed")
		return &NetworkError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.observe(r.op, strconv.Itoa(resp.StatusCode), elapsed)
	c.logger.Debug().
		Str("op", r.op).
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Str("request_id", reqID).
		Dur("elapsed", elapsed).
		Msg("request")

	if resp.StatusCode == http.StatusUnauthorized && c.creds != nil {
		if err := c.creds.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("clearing session after 401")
		} else {
			c.logger.Debug().Str("op", r.op).Msg("session cleared after 401")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", r.op, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, request{op: op, method: http.MethodGet, path: path}, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}
	return c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, out)
}
