package pushreg

import "errors"

var (
	// ErrRegistrationGone means the registration target no longer exists.
	// Callers must stop using it rather than retry.
	ErrRegistrationGone = errors.New("pushreg: registration gone")

	ErrInvalidPlatform = errors.New("pushreg: unsupported platform")
	ErrTagOwnership    = errors.New("pushreg: tag does not belong to caller")
	ErrMissingID       = errors.New("pushreg: registration id is required")
	ErrMissingHandle   = errors.New("pushreg: device handle is required")
	ErrMissingAlias    = errors.New("pushreg: caller alias is required")
	ErrNotFound        = errors.New("pushreg: registration not found")
	ErrStore           = errors.New("pushreg: registry operation failed")
	ErrDelivery        = errors.New("pushreg: native delivery failed")
)
