// Package statemachine implements small finite state machines over string
// typed states and events.
//
// A Definition is an immutable transition table built once at startup and
// shared by any number of Machine instances. A Machine is cheap: it holds the
// current state and a pointer to its Definition, so persisted entities can
// be rehydrated with Definition.Machine(storedState) and driven by Fire.
//
//	type State string
//	type Event string
//
//	def, err := statemachine.NewDefinition(
//	    statemachine.Transition[State, Event]("pending", "scheduled", "schedule",
//	        statemachine.WithGuard[State, Event](isDue)),
//	    statemachine.Transition[State, Event]("scheduled", "delivered", "deliver"),
//	)
//	m := def.Machine("pending")
//	if err := m.Fire(ctx, "schedule", reminder); err != nil {
//	    // errors.Is(err, statemachine.ErrNoTransition) or ErrRejected
//	}
//
// For a given state and event the first transition whose guards all pass
// wins, so guarded branches are listed in priority order. Actions run before
// the state changes and abort the transition on error.
//
// Machine is safe for concurrent use.
package statemachine
