package nota

import "context"

// Optimistic applies a tentative value before a commit and restores the prior
// value when the commit fails.
type Optimistic[T any] struct {
	Load  func() T
	Store func(T)
}

// Do stores next, runs commit and reverts to the previous value on error.
// The commit error is returned unchanged.
func (o Optimistic[T]) Do(ctx context.Context, next T, commit func(ctx context.Context, next T) error) error {
	prev := o.Load()
	o.Store(next)
	if err := commit(ctx, next); err != nil {
		o.Store(prev)
		return err
	}
	return nil
}
