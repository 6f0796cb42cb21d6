package webhook

import "errors"

var (
	ErrInvalidURL      = errors.New("invalid webhook URL")
	ErrInvalidPayload  = errors.New("invalid webhook payload")
	ErrMissingSecret   = errors.New("webhook signing secret is required")
	ErrBadSignature    = errors.New("webhook signature mismatch")
	ErrStaleSignature  = errors.New("webhook signature timestamp out of range")
	ErrCircuitOpen     = errors.New("webhook circuit breaker is open")
	ErrUnexpectedCode  = errors.New("webhook returned non-success status")
	ErrDeliveryFailed  = errors.New("webhook delivery failed")
	ErrRequestTimedOut = errors.New("webhook request timeout")
	ErrTokenSource     = errors.New("webhook bearer token unavailable")
)

// IsCircuitOpen reports whether err was caused by an open breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
