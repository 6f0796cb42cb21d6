package statemachine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/statemachine"
)

type state string
type event string

const (
	draft     state = "draft"
	review    state = "review"
	approved  state = "approved"
	rejected  state = "rejected"
	published state = "published"

	submit  event = "submit"
	decide  event = "decide"
	publish event = "publish"
)

func isApproved(_ context.Context, _ state, _ event, data any) bool {
	ok, _ := data.(bool)
	return ok
}

func definition(t *testing.T, opts ...statemachine.TransitionOption[state, event]) *statemachine.Definition[state, event] {
	t.Helper()
	def, err := statemachine.NewDefinition(
		statemachine.Transition(draft, review, submit),
		statemachine.Transition(review, approved, decide, statemachine.WithGuard[state, event](isApproved)),
		statemachine.Transition[state, event](review, rejected, decide),
		statemachine.Transition(approved, published, publish, opts...),
	)
	require.NoError(t, err)
	return def
}

func TestMachine_Fire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("follows transitions", func(t *testing.T) {
		t.Parallel()
		m := definition(t).Machine(draft)

		got, err := m.Fire(ctx, submit, nil)
		require.NoError(t, err)
		assert.Equal(t, review, got)
		assert.Equal(t, review, m.Current())
	})

	t.Run("first passing guard wins", func(t *testing.T) {
		t.Parallel()
		def := definition(t)

		got, err := def.Machine(review).Fire(ctx, decide, true)
		require.NoError(t, err)
		assert.Equal(t, approved, got)

		got, err = def.Machine(review).Fire(ctx, decide, false)
		require.NoError(t, err)
		assert.Equal(t, rejected, got)
	})

	t.Run("undefined event", func(t *testing.T) {
		t.Parallel()
		m := definition(t).Machine(published)

		got, err := m.Fire(ctx, submit, nil)
		assert.ErrorIs(t, err, statemachine.ErrNoTransition)
		assert.Equal(t, published, got)
	})

	t.Run("all guards reject", func(t *testing.T) {
		t.Parallel()
		def, err := statemachine.NewDefinition(
			statemachine.Transition(review, approved, decide, statemachine.WithGuard[state, event](isApproved)),
		)
		require.NoError(t, err)

		m := def.Machine(review)
		_, err = m.Fire(ctx, decide, false)
		assert.ErrorIs(t, err, statemachine.ErrRejected)
		assert.False(t, m.CanFire(ctx, decide, false))
		assert.True(t, m.CanFire(ctx, decide, true))
		assert.Equal(t, review, m.Current())
	})

	t.Run("failing action keeps state", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		m := definition(t, statemachine.WithAction[state, event](func(context.Context, state, state, event, any) error {
			return boom
		})).Machine(approved)

		_, err := m.Fire(ctx, publish, nil)
		assert.ErrorIs(t, err, statemachine.ErrActionFailed)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, approved, m.Current())
	})

	t.Run("action sees both states", func(t *testing.T) {
		t.Parallel()
		var from, to state
		m := definition(t, statemachine.WithAction[state, event](func(_ context.Context, f, dst state, _ event, _ any) error {
			from, to = f, dst
			return nil
		})).Machine(approved)

		_, err := m.Fire(ctx, publish, nil)
		require.NoError(t, err)
		assert.Equal(t, approved, from)
		assert.Equal(t, published, to)
	})
}

func TestNewDefinition_Invalid(t *testing.T) {
	t.Parallel()

	_, err := statemachine.NewDefinition(statemachine.Transition[state, event]("", review, submit))
	assert.ErrorIs(t, err, statemachine.ErrInvalidDefinition)

	assert.Panics(t, func() {
		statemachine.MustDefinition(statemachine.Transition[state, event](draft, review, ""))
	})
}

func TestDefinition_Events(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []event{decide}, definition(t).Events(review))
	assert.Empty(t, definition(t).Events(published))
}

func TestMachine_Concurrent(t *testing.T) {
	t.Parallel()

	def := statemachine.MustDefinition(statemachine.Transition[state, event](draft, review, submit))
	m := def.Machine(draft)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Fire(context.Background(), submit, nil); err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks, "only one goroutine may win the transition")
	assert.Equal(t, review, m.Current())
}
