package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithMaxRetries caps retries after the first attempt. Default 3.
func WithMaxRetries(n int) Option {
	return func(cl *Client) {
		if n >= 0 {
			cl.maxRetries = n
		}
	}
}

func WithBackoff(b Backoff) Option {
	return func(cl *Client) {
		if b != nil {
			cl.backoff = b
		}
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(cl *Client) {
		if p != nil {
			cl.retry = p
		}
	}
}

// WithTimeout bounds each attempt. Default 30s.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithSigningSecret signs every request body with HMAC-SHA256.
func WithSigningSecret(secret string) Option {
	return func(cl *Client) { cl.secret = secret }
}

// WithCircuitBreaker keeps one breaker per endpoint host.
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(cl *Client) {
		cl.breakers = &breakers{
			threshold: threshold,
			cooldown:  cooldown,
			byHost:    make(map[string]*CircuitBreaker),
		}
	}
}

func WithHeader(key, value string) Option {
	return func(cl *Client) {
		if key != "" {
			cl.headers.Set(key, value)
		}
	}
}

// WithBearerToken calls source before every attempt and sends the result
// as a bearer token.
func WithBearerToken(source func(context.Context) (string, error)) Option {
	return func(cl *Client) { cl.token = source }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}
