package query

import (
	"context"

	"github.com/courseforge/commerce/internal/session"
)

// MutateFunc performs the side-effecting collaborator call.
type MutateFunc[P, T any] func(ctx context.Context, payload P) (T, error)

// Mutation is the write-side twin of Query. A successful mutation invalidates
// the linked query kinds so the next read refetches; a failed one leaves the
// cache untouched. The cache stays pull-only after writes, so no optimistic
// update or rollback exists.
type Mutation[P, T any] struct {
	cache       *session.Cache
	run         MutateFunc[P, T]
	invalidates []string
}

// NewMutation builds a mutation that invalidates the given query kinds on
// success.
func NewMutation[P, T any](cache *session.Cache, run MutateFunc[P, T], invalidates ...string) *Mutation[P, T] {
	return &Mutation[P, T]{cache: cache, run: run, invalidates: invalidates}
}

// Do executes the mutation.
func (m *Mutation[P, T]) Do(ctx context.Context, payload P) (T, error) {
	out, err := m.run(ctx, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	for _, kind := range m.invalidates {
		m.cache.InvalidateEntry(m.cache.ScopedKey(kind))
	}
	return out, nil
}
