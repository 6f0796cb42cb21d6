package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SenderRepository stores outgoing messages and cancels scheduled ones.
type SenderRepository interface {
	// CreateMessage persists msg and returns its sequence number.
	CreateMessage(ctx context.Context, msg *Message) (int64, error)

	// CancelScheduled cancels a pending message by sequence number.
	// Returns ErrMessageNotFound if it was already delivered, cancelled or never existed.
	CancelScheduled(ctx context.Context, queue string, sequenceNumber int64) error
}

// Sender publishes messages to named queues. It is safe for concurrent use.
type Sender struct {
	repo          SenderRepository
	maxDeliveries int8
	logger        *slog.Logger
}

// NewSender creates a new Sender.
func NewSender(repo SenderRepository, opts ...SenderOption) (*Sender, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &senderOptions{
		maxDeliveries: 10,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Sender{
		repo:          repo,
		maxDeliveries: options.maxDeliveries,
		logger:        options.logger,
	}, nil
}

// Send publishes env to queue for immediate delivery.
func (s *Sender) Send(ctx context.Context, queue string, env Envelope) (int64, error) {
	return s.publish(ctx, queue, env, time.Now())
}

// Schedule publishes env to queue, invisible to consumers until at.
func (s *Sender) Schedule(ctx context.Context, queue string, env Envelope, at time.Time) (int64, error) {
	return s.publish(ctx, queue, env, at)
}

// CancelScheduled cancels a scheduled message. Cancelling a message that
// has already been delivered or cancelled returns ErrMessageNotFound.
func (s *Sender) CancelScheduled(ctx context.Context, queue string, sequenceNumber int64) error {
	if queue == "" {
		return ErrQueueNameEmpty
	}
	if sequenceNumber <= 0 {
		return ErrInvalidSequence
	}

	if err := s.repo.CancelScheduled(ctx, queue, sequenceNumber); err != nil {
		return fmt.Errorf("cancel %d on %s: %w", sequenceNumber, queue, err)
	}

	s.logger.DebugContext(ctx, "scheduled message cancelled",
		slog.String("queue", queue),
		slog.Int64("sequence_number", sequenceNumber))
	return nil
}

func (s *Sender) publish(ctx context.Context, queue string, env Envelope, at time.Time) (int64, error) {
	if queue == "" {
		return 0, ErrQueueNameEmpty
	}
	if env.MessageID == "" {
		return 0, ErrMessageIDEmpty
	}

	msg := &Message{
		ID:            uuid.New(),
		Queue:         queue,
		MessageID:     env.MessageID,
		SessionID:     env.SessionID,
		Properties:    env.Properties,
		Body:          env.Body,
		Status:        StatusPending,
		MaxDeliveries: s.maxDeliveries,
		ScheduledAt:   at.UTC(),
		CreatedAt:     time.Now().UTC(),
	}

	seq, err := s.repo.CreateMessage(ctx, msg)
	if err != nil {
		return 0, errors.Join(ErrMessageCreate, err)
	}

	s.logger.DebugContext(ctx, "message published",
		slog.String("queue", queue),
		slog.String("message_id", env.MessageID),
		slog.Int64("sequence_number", seq),
		slog.Time("scheduled_at", msg.ScheduledAt))
	return seq, nil
}
