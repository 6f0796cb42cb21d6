package delivery

import "errors"

var (
	// ErrPermanent marks a delivery failure that must not be retried.
	ErrPermanent = errors.New("delivery: permanent failure")

	ErrPayload          = errors.New("delivery: cannot load payload")
	ErrUnexpectedStatus = errors.New("delivery: endpoint rejected the item")
	ErrNoEndpoint       = errors.New("delivery: endpoint not configured")
)
