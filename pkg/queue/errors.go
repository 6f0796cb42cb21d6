package queue

import "errors"

var (
	ErrRepositoryNil    = errors.New("repository cannot be nil")
	ErrQueueNameEmpty   = errors.New("queue name cannot be empty")
	ErrMessageIDEmpty   = errors.New("message id cannot be empty")
	ErrMessageCreate    = errors.New("failed to store message")
	ErrMessageNotFound  = errors.New("message not found")
	ErrInvalidSequence  = errors.New("sequence number must be positive")
	ErrNoMessageToClaim = errors.New("no message available to claim")

	ErrHandlerNotFound = errors.New("no handler registered for queue")
	ErrNoHandlers      = errors.New("no queue handlers registered")

	ErrWorkerStarted    = errors.New("worker already started")
	ErrWorkerNotStarted = errors.New("worker not started")

	ErrFailedToUpdateStatus = errors.New("failed to update message status")
	ErrFailedToMoveToDLQ    = errors.New("failed to move message to dead letter queue")
)
