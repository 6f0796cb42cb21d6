package webpushreg

import "errors"

var (
	ErrInvalidSubscription = errors.New("webpushreg: invalid subscription")
	ErrMissingAlias        = errors.New("webpushreg: user alias is required")
	ErrStore               = errors.New("webpushreg: store operation failed")
)
