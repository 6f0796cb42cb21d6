package status

import "errors"

var (
	ErrInvalidKey = errors.New("status: partition and row keys are required")
	ErrStore      = errors.New("status: store operation failed")
)
