package providerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
)

const (
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize caps response bodies at 5MB.
	MaxResponseSize = 5 * 1024 * 1024
)

var ErrResponseTooLarge = errors.New("providerapi: response too large")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("providerapi: unexpected status %d", e.StatusCode)
}

// Config holds HTTP client settings.
type Config struct {
	Provider        string
	Timeout         time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
}

// Client performs JSON calls against a provider API with size limits,
// logging and metrics.
type Client struct {
	provider string
	client   *http.Client
	logger   interfaces.Logger
	metrics  *Metrics
}

type Option func(*Client)

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithHTTPClient replaces the underlying client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		provider: cfg.Provider,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    cfg.MaxIdleConns,
				IdleConnTimeout: cfg.IdleConnTimeout,
			},
			Timeout: cfg.Timeout,
		},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Request describes one API call. Body, when set, is JSON encoded.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Do executes req and decodes a JSON response into out when out is not nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("providerapi: encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return fmt.Errorf("providerapi: create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(method, "error", duration)
		c.logger.WithContext(ctx).Error("provider api request failed", "method", method, "url", req.URL, "error", err)
		return fmt.Errorf("providerapi: request failed: %w", err)
	}
	defer resp.Body.Close()
	c.observe(method, strconv.Itoa(resp.StatusCode), duration)

	if resp.ContentLength > MaxResponseSize {
		return fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, resp.ContentLength)
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return fmt.Errorf("providerapi: read body: %w", err)
	}
	if len(payload) > MaxResponseSize {
		return fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, len(payload))
	}

	c.logger.WithContext(ctx).Debug("provider api request", "method", method, "url", req.URL, "status", resp.StatusCode, "duration", duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: payload}
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("providerapi: decode response: %w", err)
	}
	return nil
}

func (c *Client) observe(method, status string, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(c.provider, method, status).Inc()
	c.metrics.RequestDuration.WithLabelValues(c.provider, method).Observe(duration.Seconds())
}
