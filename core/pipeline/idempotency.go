package pipeline

import (
	"context"
	"errors"

	"video-pipeline/storage"
)

// IdempotencyGuard checks whether a stage's output already exists before any
// work is done, making redelivery of the same trigger safe. It is advisory,
// not a distributed lock: two concurrent redeliveries may both pass the check
// and both do the work, and the second write overwrites the first with
// equivalent content.
type IdempotencyGuard struct {
	store storage.ObjectStore
}

// NewIdempotencyGuard creates a guard probing the given store
func NewIdempotencyGuard(store storage.ObjectStore) *IdempotencyGuard {
	return &IdempotencyGuard{store: store}
}

// AlreadyProduced reports whether the output key already exists. A missing
// object is (false, nil). Any other lookup failure is (false, err) so the
// caller can log it and still proceed with work rather than blocking the
// pipeline on a transient lookup error.
func (g *IdempotencyGuard) AlreadyProduced(ctx context.Context, outputKey string) (bool, error) {
	_, err := g.store.Head(ctx, outputKey)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, err
}
