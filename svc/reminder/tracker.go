package reminder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/statemachine"
	"github.com/dmitrymomot/notifyhub/svc/notification"
)

const casAttempts = 3

// Tracker drives reminder lifecycles over a Store.
type Tracker struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Tracker)

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewTracker(store Store, opts ...Option) *Tracker {
	t := &Tracker{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Scheduled records that r was scheduled under seq.
func (t *Tracker) Scheduled(ctx context.Context, seq int64, r *notification.Reminder) error {
	_, err := t.advance(ctx, seq, EventSchedule, r)
	return err
}

// Cancel marks the reminder under seq cancelled. Cancelling twice is not an
// error. A delivered reminder yields ErrAlreadyDelivered.
func (t *Tracker) Cancel(ctx context.Context, seq int64) error {
	s, err := t.advance(ctx, seq, EventCancel, nil)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, statemachine.ErrNoTransition) && s == Cancelled:
		return nil
	case errors.Is(err, statemachine.ErrNoTransition) && s == Delivered:
		return ErrAlreadyDelivered
	}
	return err
}

// Deliver claims the reminder under seq for delivery. It reports false when
// the reminder was cancelled or already delivered.
func (t *Tracker) Deliver(ctx context.Context, seq int64) (bool, error) {
	s, err := t.advance(ctx, seq, EventDeliver, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, statemachine.ErrNoTransition) {
		t.logger.LogAttrs(ctx, slog.LevelInfo, "reminder not deliverable",
			logger.Event("ignored"),
			logger.SequenceNumber(seq),
			slog.String("state", string(s)),
		)
		return false, nil
	}
	return false, err
}

// State returns the tracked state for seq.
func (t *Tracker) State(ctx context.Context, seq int64) (State, error) {
	s, err := t.store.Get(ctx, seq)
	if err != nil {
		return "", errors.Join(ErrStore, err)
	}
	return s, nil
}

// advance fires event from the stored state and swaps the result in,
// retrying when another caller changed the state first. On a state machine
// error it returns the state the error was computed against.
func (t *Tracker) advance(ctx context.Context, seq int64, event Event, data any) (State, error) {
	for range casAttempts {
		cur, err := t.State(ctx, seq)
		if err != nil {
			return "", err
		}

		next, err := lifecycle.Machine(cur).Fire(ctx, event, data)
		if err != nil {
			return cur, err
		}

		swapped, err := t.store.CompareAndSwap(ctx, seq, cur, next)
		if err != nil {
			return "", errors.Join(ErrStore, err)
		}
		if swapped {
			t.logger.LogAttrs(ctx, slog.LevelDebug, "reminder state changed",
				logger.SequenceNumber(seq),
				slog.String("from", string(cur)),
				slog.String("to", string(next)),
			)
			return next, nil
		}
	}
	return "", ErrConflict
}
