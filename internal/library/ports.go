package library

import (
	"context"

	"booktrack/internal/book"
)

// Store defines tracked-book and summary storage. CreateTracked must report
// ErrAlreadyTracked when the insert loses a race on the (user, book)
// uniqueness constraint. InTx runs fn against a store bound to one
// transaction; mutations and the summary recompute that follows them share
// that boundary.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error
	CreateTracked(ctx context.Context, tb *TrackedBook) error
	UpdateTracked(ctx context.Context, tb *TrackedBook) error
	GetTracked(ctx context.Context, id string) (TrackedBook, *int, error)
	ListByUser(ctx context.Context, userID, status string) ([]Item, error)
	SaveSummary(ctx context.Context, s *Summary) error
	GetSummary(ctx context.Context, userID string) (Summary, error)
}

// Reconciler resolves an add request to exactly one catalog record.
type Reconciler interface {
	Reconcile(ctx context.Context, req book.AddRequest) (book.Record, error)
}
