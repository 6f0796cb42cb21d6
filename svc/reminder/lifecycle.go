package reminder

import (
	"context"

	"github.com/dmitrymomot/notifyhub/pkg/statemachine"
	"github.com/dmitrymomot/notifyhub/svc/notification"
)

type State string

const (
	Pending   State = "pending"
	Scheduled State = "scheduled"
	Skipped   State = "skipped"
	Delivered State = "delivered"
	Cancelled State = "cancelled"
)

type Event string

const (
	EventSchedule Event = "schedule"
	EventSkip     Event = "skip"
	EventDeliver  Event = "deliver"
	EventCancel   Event = "cancel"
)

// Pending also accepts deliver and cancel so that a reminder whose tracking
// entry expired or was never written is still handled.
var lifecycle = statemachine.MustDefinition(
	statemachine.Transition(Pending, Scheduled, EventSchedule, statemachine.WithGuard[State, Event](due)),
	statemachine.Transition[State, Event](Pending, Skipped, EventSkip),
	statemachine.Transition[State, Event](Pending, Delivered, EventDeliver),
	statemachine.Transition[State, Event](Pending, Cancelled, EventCancel),
	statemachine.Transition[State, Event](Scheduled, Delivered, EventDeliver),
	statemachine.Transition[State, Event](Scheduled, Cancelled, EventCancel),
)

func due(_ context.Context, _ State, _ Event, data any) bool {
	r, _ := data.(*notification.Reminder)
	return r.Due()
}

// Decide reports whether r should be scheduled (Scheduled) or not (Skipped).
func Decide(ctx context.Context, r *notification.Reminder) State {
	m := lifecycle.Machine(Pending)
	if s, err := m.Fire(ctx, EventSchedule, r); err == nil {
		return s
	}
	s, _ := m.Fire(ctx, EventSkip, nil)
	return s
}
