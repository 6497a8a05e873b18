package statemachine

import (
	"context"
	"errors"
	"fmt"
)

// Guard decides at fire time whether a transition may be taken.
type Guard[S comparable] func(ctx context.Context, from S) bool

type transition[S comparable] struct {
	to     S
	guards []Guard[S]
}

// Table is an immutable transition table keyed by source state and event.
// It carries no current state, so a single Table serves every record whose
// lifecycle it describes.
type Table[S, E comparable] struct {
	transitions map[S]map[E][]transition[S]
}

// Option registers transitions while building a Table.
type Option[S, E comparable] func(*Table[S, E])

// WithTransition allows event to move any of from into to.
// Guards, if any, must all pass.
func WithTransition[S, E comparable](event E, to S, from []S, guards ...Guard[S]) Option[S, E] {
	return func(t *Table[S, E]) {
		for _, f := range from {
			if t.transitions[f] == nil {
				t.transitions[f] = make(map[E][]transition[S])
			}
			t.transitions[f][event] = append(t.transitions[f][event], transition[S]{to: to, guards: guards})
		}
	}
}

// New builds a Table. It returns ErrEmptyTable when no transitions were given.
func New[S, E comparable](opts ...Option[S, E]) (*Table[S, E], error) {
	t := &Table[S, E]{transitions: make(map[S]map[E][]transition[S])}
	for _, opt := range opts {
		opt(t)
	}
	if len(t.transitions) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// MustNew panics where New would fail. Use it for package-level tables.
func MustNew[S, E comparable](opts ...Option[S, E]) *Table[S, E] {
	t, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Fire returns the state event leads to from the current state.
// The first registered transition whose guards pass wins.
func (t *Table[S, E]) Fire(ctx context.Context, current S, event E) (S, error) {
	candidates := t.transitions[current][event]
	if len(candidates) == 0 {
		return current, &NoTransitionError{State: fmt.Sprint(current), Event: fmt.Sprint(event)}
	}

	for _, c := range candidates {
		if passes(ctx, current, c.guards) {
			return c.to, nil
		}
	}
	return current, &RejectedError{State: fmt.Sprint(current), Event: fmt.Sprint(event)}
}

// CanFire reports whether Fire would succeed.
func (t *Table[S, E]) CanFire(ctx context.Context, current S, event E) bool {
	_, err := t.Fire(ctx, current, event)
	return err == nil
}

func passes[S comparable](ctx context.Context, from S, guards []Guard[S]) bool {
	for _, g := range guards {
		if g != nil && !g(ctx, from) {
			return false
		}
	}
	return true
}

var ErrEmptyTable = errors.New("statemachine: no transitions registered")

// NoTransitionError means the event is not defined for the state.
type NoTransitionError struct {
	State string
	Event string
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("statemachine: no transition from %q on %q", e.State, e.Event)
}

// RejectedError means every candidate transition was blocked by a guard.
type RejectedError struct {
	State string
	Event string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("statemachine: transition from %q on %q rejected by guards", e.State, e.Event)
}

func IsNoTransition(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}

func IsRejected(err error) bool {
	var e *RejectedError
	return errors.As(err, &e)
}
