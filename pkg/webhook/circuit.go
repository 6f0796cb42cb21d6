package webhook

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker stops calls to an endpoint after threshold consecutive
// failures and lets one probe through once cooldown has elapsed.
type CircuitBreaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	state    CircuitState
	failures int
	openedAt time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.state = CircuitHalfOpen
		return true
	case CircuitHalfOpen:
		// a probe is already in flight
		return false
	}
	return true
}

func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	cb.state = CircuitClosed
	cb.failures = 0
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.state == CircuitHalfOpen || cb.failures >= cb.threshold {
		cb.state = CircuitOpen
		cb.openedAt = cb.now()
	}
}

// Abort ends a call whose outcome says nothing about the endpoint. A
// half-open breaker goes back to open and lets the next call probe again.
func (cb *CircuitBreaker) Abort() {
	cb.mu.Lock()
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// breakers hands out one CircuitBreaker per endpoint host.
type breakers struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	byHost    map[string]*CircuitBreaker
}

func (b *breakers) get(host string) *CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	cb, ok := b.byHost[host]
	if !ok {
		cb = NewCircuitBreaker(b.threshold, b.cooldown)
		b.byHost[host] = cb
	}
	return cb
}

// settle reports a finished call to cb. Transport errors, timeouts, 429 and
// 5xx count as failures. Any other answer proves the endpoint is up, even a
// rejected payload.
func (cb *CircuitBreaker) settle(status int, err error) {
	switch {
	case errors.Is(err, ErrTokenSource), errors.Is(err, context.Canceled):
		cb.Abort()
	case err != nil,
		status >= http.StatusInternalServerError,
		status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests:
		cb.Failure()
	default:
		cb.Success()
	}
}
