// Package httpclient provides an HTTP client with status-aware retry and
// exponential backoff. The model-call gateway uses it with retries disabled
// (retry policy belongs to the gateway's caller); live tool executors use
// the backoff path for flaky market-data providers.
package httpclient

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"
)

type RetryStrategy int

const (
	NoRetry RetryStrategy = iota
	ConservativeRetry
	SmartRetry
)

type RetryStrategyFunc func(statusCode int) RetryStrategy

type Client struct {
	client       *http.Client
	maxRetries   int
	baseDelay    time.Duration
	strategyFunc RetryStrategyFunc
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithMaxRetries(max int) Option {
	return func(c *Client) {
		c.maxRetries = max
	}
}

func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = delay
	}
}

func WithRetryStrategy(strategyFunc RetryStrategyFunc) Option {
	return func(c *Client) {
		c.strategyFunc = strategyFunc
	}
}

func New(opts ...Option) *Client {
	client := &Client{
		client:       &http.Client{Timeout: 60 * time.Second},
		maxRetries:   0,
		baseDelay:    2 * time.Second,
		strategyFunc: DefaultRetryStrategy,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func DefaultRetryStrategy(statusCode int) RetryStrategy {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable:
		return SmartRetry
	case http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusGatewayTimeout:
		return ConservativeRetry
	default:
		return NoRetry
	}
}

// Do executes the request, retrying on retryable status codes up to the
// configured maximum. Request bodies are recreated via GetBody on retry.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to recreate request body for retry: %w", err)
			}
			req.Body = body
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}

		strategy := c.strategyFunc(resp.StatusCode)
		if strategy == NoRetry {
			return resp, nil
		}

		lastResp = resp
		lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)

		if attempt >= c.maxRetries {
			break
		}

		resp.Body.Close()
		delay := c.calculateDelay(strategy, attempt)
		slog.Debug("retrying HTTP request",
			"host", req.URL.Host,
			"status", resp.StatusCode,
			"attempt", attempt+1,
			"delay", delay)
		time.Sleep(delay)
	}

	if c.maxRetries > 0 {
		return lastResp, &RetryableError{
			StatusCode: lastResp.StatusCode,
			Message:    fmt.Sprintf("max HTTP retries (%d) exceeded", c.maxRetries),
			Err:        lastErr,
		}
	}
	return lastResp, nil
}

func (c *Client) calculateDelay(strategy RetryStrategy, attempt int) time.Duration {
	switch strategy {
	case SmartRetry:
		// Exponential backoff, capped at 30s.
		delay := time.Duration(float64(c.baseDelay) * math.Pow(2, float64(attempt)))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		return delay
	case ConservativeRetry:
		return c.baseDelay
	default:
		return 0
	}
}
