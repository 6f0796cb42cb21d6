package broadcast

import "errors"

var (
	ErrSenderNil  = errors.New("broadcast: queue sender cannot be nil")
	ErrStorageNil = errors.New("broadcast: blob storage cannot be nil")
	ErrNoQueue    = errors.New("broadcast: no queue configured for channel")
	ErrOffload    = errors.New("broadcast: failed to offload payload")
)
