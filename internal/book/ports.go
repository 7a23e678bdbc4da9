package book

import (
	"context"

	"booktrack/internal/catalog"
)

// Store defines the contract for catalog record storage. Create must report
// ErrDuplicate when the insert loses a race on the ISBN or external id
// uniqueness constraints so the reconciler can re-read instead of failing.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	GetByISBN(ctx context.Context, isbn string) (Record, error)
	GetByExternalID(ctx context.Context, externalID string) (Record, error)
}

// Lookup resolves an ISBN against the external catalog. Absent covers both
// "provider has no record" and "provider unavailable".
type Lookup interface {
	LookupISBN(ctx context.Context, isbn string) (catalog.Entry, bool)
}
