package statemachine

import "errors"

var (
	// ErrNoTransition means the current state defines no transition for the
	// event.
	ErrNoTransition = errors.New("statemachine: no transition available")
	// ErrRejected means transitions exist but every one was blocked by a guard.
	ErrRejected = errors.New("statemachine: transition rejected by guards")
	// ErrActionFailed wraps an error returned by a transition action.
	ErrActionFailed = errors.New("statemachine: transition action failed")
	// ErrInvalidDefinition is returned for empty states or events.
	ErrInvalidDefinition = errors.New("statemachine: invalid transition definition")
)
