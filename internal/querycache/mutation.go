package querycache

import (
	"context"
	"sync/atomic"
)

// MutationHooks are called after a mutation finishes. Any of them may be nil.
// OnSettled runs last, after OnSuccess or OnError.
type MutationHooks[In any] struct {
	OnSuccess func(ctx context.Context, in In)
	OnError   func(ctx context.Context, in In, err error)
	OnSettled func(ctx context.Context, in In, err error)
}

// Mutation wraps a write so callers can observe whether it is running and react to its
// outcome, typically by invalidating the queries it affects.
type Mutation[In any] struct {
	fn      func(ctx context.Context, in In) error
	hooks   MutationHooks[In]
	pending atomic.Int32
}

func NewMutation[In any](fn func(ctx context.Context, in In) error, hooks MutationHooks[In]) *Mutation[In] {
	return &Mutation[In]{fn: fn, hooks: hooks}
}

// Do runs the mutation and returns its error after the hooks have run.
func (m *Mutation[In]) Do(ctx context.Context, in In) error {
	m.pending.Add(1)
	defer m.pending.Add(-1)

	err := m.fn(ctx, in)

	if err != nil {
		if m.hooks.OnError != nil {
			m.hooks.OnError(ctx, in, err)
		}
	} else if m.hooks.OnSuccess != nil {
		m.hooks.OnSuccess(ctx, in)
	}

	if m.hooks.OnSettled != nil {
		m.hooks.OnSettled(ctx, in, err)
	}

	return err
}

// Pending reports whether at least one Do call is running.
func (m *Mutation[In]) Pending() bool {
	return m.pending.Load() > 0
}
