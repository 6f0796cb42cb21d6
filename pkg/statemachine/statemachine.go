package statemachine

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Guard reports whether a transition may proceed.
type Guard[S, E ~string] func(ctx context.Context, from S, event E, data any) bool

// Action runs a side effect during a transition. An error aborts it.
type Action[S, E ~string] func(ctx context.Context, from, to S, event E, data any) error

type transition[S, E ~string] struct {
	to      S
	guards  []Guard[S, E]
	actions []Action[S, E]
}

// TransitionOption configures one transition.
type TransitionOption[S, E ~string] func(*transition[S, E])

func WithGuard[S, E ~string](g Guard[S, E]) TransitionOption[S, E] {
	return func(t *transition[S, E]) {
		if g != nil {
			t.guards = append(t.guards, g)
		}
	}
}

func WithAction[S, E ~string](a Action[S, E]) TransitionOption[S, E] {
	return func(t *transition[S, E]) {
		if a != nil {
			t.actions = append(t.actions, a)
		}
	}
}

// Edge is one row of a transition table.
type Edge[S, E ~string] struct {
	from  S
	event E
	t     transition[S, E]
}

// Transition declares a move from one state to another on event.
func Transition[S, E ~string](from, to S, event E, opts ...TransitionOption[S, E]) Edge[S, E] {
	e := Edge[S, E]{from: from, event: event, t: transition[S, E]{to: to}}
	for _, opt := range opts {
		opt(&e.t)
	}
	return e
}

// Definition is an immutable transition table.
type Definition[S, E ~string] struct {
	table map[S]map[E][]transition[S, E]
}

// NewDefinition builds a transition table from edges, in declaration order.
func NewDefinition[S, E ~string](edges ...Edge[S, E]) (*Definition[S, E], error) {
	d := &Definition[S, E]{table: make(map[S]map[E][]transition[S, E])}
	for i, e := range edges {
		if e.from == "" || e.t.to == "" || e.event == "" {
			return nil, fmt.Errorf("%w: edge %d", ErrInvalidDefinition, i)
		}
		if d.table[e.from] == nil {
			d.table[e.from] = make(map[E][]transition[S, E])
		}
		d.table[e.from][e.event] = append(d.table[e.from][e.event], e.t)
	}
	return d, nil
}

// MustDefinition is NewDefinition that panics on error.
func MustDefinition[S, E ~string](edges ...Edge[S, E]) *Definition[S, E] {
	d, err := NewDefinition(edges...)
	if err != nil {
		panic(err)
	}
	return d
}

// Machine returns a machine positioned at current.
func (d *Definition[S, E]) Machine(current S) *Machine[S, E] {
	return &Machine[S, E]{def: d, current: current}
}

// Events lists the events defined for state, in no particular order.
func (d *Definition[S, E]) Events(state S) []E {
	out := make([]E, 0, len(d.table[state]))
	for e := range d.table[state] {
		out = append(out, e)
	}
	return out
}

// resolve picks the first transition for (from, event) whose guards pass.
func (d *Definition[S, E]) resolve(ctx context.Context, from S, event E, data any) (*transition[S, E], error) {
	candidates := d.table[from][event]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: state %q event %q", ErrNoTransition, from, event)
	}

next:
	for i := range candidates {
		for _, g := range candidates[i].guards {
			if !g(ctx, from, event, data) {
				continue next
			}
		}
		return &candidates[i], nil
	}
	return nil, fmt.Errorf("%w: state %q event %q", ErrRejected, from, event)
}

// Machine tracks the current state of one entity.
type Machine[S, E ~string] struct {
	mu      sync.Mutex
	def     *Definition[S, E]
	current S
}

func (m *Machine[S, E]) Current() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Fire applies event and returns the new state.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.def.resolve(ctx, m.current, event, data)
	if err != nil {
		return m.current, err
	}
	for _, a := range t.actions {
		if err := a(ctx, m.current, t.to, event, data); err != nil {
			return m.current, errors.Join(ErrActionFailed, err)
		}
	}
	m.current = t.to
	return m.current, nil
}

// CanFire reports whether Fire would find a transition. Actions are not run.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E, data any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.def.resolve(ctx, m.current, event, data)
	return err == nil
}
