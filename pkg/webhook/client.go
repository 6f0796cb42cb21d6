package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/requestid"
)

const maxResponseBody = 64 << 10

// Response is the outcome of the final attempt.
type Response struct {
	StatusCode int
	Body       []byte
	Attempts   int
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts JSON payloads to outbound endpoints with bounded retries.
type Client struct {
	http       *http.Client
	maxRetries int
	backoff    Backoff
	retry      RetryPolicy
	timeout    time.Duration
	secret     string
	headers    http.Header
	token      func(context.Context) (string, error)
	breakers   *breakers
	logger     *slog.Logger
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries: 3,
		backoff:    ExponentialBackoff{Base: time.Second, Max: 30 * time.Second},
		retry:      DefaultRetryPolicy,
		timeout:    30 * time.Second,
		headers:    make(http.Header),
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON marshals data and posts it to endpoint.
func (c *Client) PostJSON(ctx context.Context, endpoint string, data any) (*Response, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	return c.Post(ctx, endpoint, payload)
}

// Post sends payload as application/json. A non-2xx final status yields
// both the Response and an ErrUnexpectedCode error.
func (c *Client) Post(ctx context.Context, endpoint string, payload []byte) (*Response, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, endpoint)
	}
	if len(payload) == 0 {
		return nil, ErrInvalidPayload
	}

	var cb *CircuitBreaker
	if c.breakers != nil {
		cb = c.breakers.get(u.Host)
		if !cb.Allow() {
			return nil, ErrCircuitOpen
		}
	}

	var (
		resp    *Response
		lastErr error
	)
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				if cb != nil {
					cb.Abort()
				}
				return resp, ctx.Err()
			case <-time.After(c.backoff.NextInterval(attempt)):
			}
		}

		resp, lastErr = c.do(ctx, endpoint, payload)
		status := 0
		if resp != nil {
			resp.Attempts = attempt + 1
			status = resp.StatusCode
		}
		if lastErr == nil && resp.OK() {
			if cb != nil {
				cb.settle(status, nil)
			}
			return resp, nil
		}
		if !c.retry(status, lastErr) {
			break
		}
		c.logger.DebugContext(ctx, "webhook attempt failed",
			slog.String("endpoint", u.Host),
			slog.Int("status", status),
			logger.RetryCount(attempt+1),
			logger.Error(lastErr),
		)
	}

	if cb != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		cb.settle(status, lastErr)
	}
	if lastErr != nil {
		return resp, errors.Join(ErrDeliveryFailed, lastErr)
	}
	return resp, fmt.Errorf("%w: %d", ErrUnexpectedCode, resp.StatusCode)
}

func (c *Client) do(ctx context.Context, endpoint string, payload []byte) (*Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "notifyhub/1.0")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return nil, errors.Join(ErrTokenSource, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.secret != "" {
		if err := setSignature(req.Header, c.secret, payload); err != nil {
			return nil, err
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, errors.Join(ErrRequestTimedOut, err)
		}
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	return &Response{StatusCode: res.StatusCode, Body: body}, nil
}
