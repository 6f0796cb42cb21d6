package notification

import "errors"

var (
	// ErrInvalidData marks client input that can never succeed on retry.
	ErrInvalidData = errors.New("invalid notification data")

	ErrUnknownType     = errors.New("unknown notification type")
	ErrInvalidTemplate = errors.New("invalid template data")
)
