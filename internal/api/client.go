package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"screener/internal/config"
	"screener/internal/errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 32 << 20

// Recorder receives per-request measurements
type Recorder interface {
	RecordAPIRequest(ctx context.Context, endpoint, method string, status int, duration time.Duration, err error)
}

// Client talks to the resume screening API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breaker    *CircuitBreaker
	logger     *errors.Logger
	recorder   Recorder
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates an API client from configuration
func NewClient(cfg config.APIConfig, logger *errors.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = errors.Nop()
	}
	c := &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewCircuitBreaker("screening", cfg.CircuitBreaker, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client is bound to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BreakerStats exposes the circuit breaker state for health output
func (c *Client) BreakerStats() map[string]any {
	return c.breaker.GetStats()
}

// Healthy reports whether calls are currently allowed through
func (c *Client) Healthy() bool {
	return c.breaker.IsHealthy()
}

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode request body", err)
	}
	return request{method: method, path: path, body: body, contentType: "application/json"}, nil
}

// do sends req and decodes a 2xx JSON answer into out (when non-nil)
func (c *Client) do(ctx context.Context, req request, out any) error {
	requestID := uuid.NewString()
	start := time.Now()
	status := 0

	payload, err := c.breaker.Execute(func() ([]byte, error) {
		var (
			body []byte
			rerr error
		)
		status, body, rerr = c.roundTrip(ctx, req, requestID)
		return body, rerr
	})

	duration := time.Since(start)
	if c.recorder != nil {
		c.recorder.RecordAPIRequest(ctx, req.path, req.method, status, duration, err)
	}

	if err != nil {
		c.logger.LogError(err, "API request failed",
			"method", req.method,
			"path", req.path,
			"status", status,
			"request_id", requestID,
			"duration_ms", duration.Milliseconds())
		return err
	}

	c.logger.Debug("API request completed",
		"method", req.method,
		"path", req.path,
		"status", status,
		"request_id", requestID,
		"duration_ms", duration.Milliseconds())

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.NewAPIError(errors.ErrCodeAPIDecode, "unexpected response from screening API", err).
			WithContext("path", req.path)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req request, requestID string) (int, []byte, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return 0, nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build request", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		code := errors.ErrCodeNetworkFailed
		if stderrors.Is(err, context.DeadlineExceeded) {
			code = errors.ErrCodeNetworkTimeout
		}
		return 0, nil, errors.NewNetworkError(code, fmt.Sprintf("%s %s failed", req.method, req.path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, errors.NewNetworkError(errors.ErrCodeNetworkFailed, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil, newAPIError(req.method, req.path, resp.StatusCode, data)
	}
	return resp.StatusCode, data, nil
}
