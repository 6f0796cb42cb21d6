package reminder

import "errors"

var (
	ErrAlreadyDelivered = errors.New("reminder: already delivered")
	ErrConflict         = errors.New("reminder: concurrent state change")
	ErrStore            = errors.New("reminder: state store failed")
)
