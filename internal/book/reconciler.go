package book

import (
	"context"
	"errors"
	"strings"

	"booktrack/internal/catalog"

	"github.com/rs/zerolog"
)

// Reconciler resolves an add request to exactly one persisted Record:
// an existing record by ISBN, then by external id, then a new record built
// from an external lookup, then a new record built from the request itself.
type Reconciler struct {
	store  Store
	lookup Lookup
	log    zerolog.Logger
}

func NewReconciler(store Store, lookup Lookup, log zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, lookup: lookup, log: log}
}

// Reconcile returns the record the request refers to, creating it if needed.
// An existing record always wins over request fields so a second add of the
// same physical book cannot overwrite its metadata. Two concurrent adds for
// the same new ISBN are resolved by the store's uniqueness constraint plus a
// compensating re-read here.
func (r *Reconciler) Reconcile(ctx context.Context, req AddRequest) (Record, error) {
	req.ISBN = strings.TrimSpace(req.ISBN)

	if req.ISBN != "" {
		rec, err := r.store.GetByISBN(ctx, req.ISBN)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Record{}, err
		}
	}

	rec := r.build(ctx, req)

	if rec.ExternalID != "" {
		existing, err := r.store.GetByExternalID(ctx, rec.ExternalID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Record{}, err
		}
	}

	if rec.Title == "" || rec.Author == "" {
		return Record{}, ErrValidation
	}

	if err := r.store.Create(ctx, &rec); err != nil {
		// Lost the create race; the record exists now. Re-read through
		// whichever identity the insert can have collided on.
		if errors.Is(err, ErrDuplicate) {
			if req.ISBN != "" {
				r.log.Debug().Str("isbn", req.ISBN).Msg("isbn insert raced, re-reading")
				return r.store.GetByISBN(ctx, req.ISBN)
			}
			if rec.ExternalID != "" {
				r.log.Debug().Str("external_id", rec.ExternalID).Msg("external id insert raced, re-reading")
				return r.store.GetByExternalID(ctx, rec.ExternalID)
			}
		}
		return Record{}, err
	}
	return rec, nil
}

// build produces the record to persist: external data wins for descriptive
// fields when the lookup succeeds, with the request's ISBN always retained
// since the provider entry may not echo it back.
func (r *Reconciler) build(ctx context.Context, req AddRequest) Record {
	if req.ISBN != "" {
		if entry, ok := r.lookup.LookupISBN(ctx, req.ISBN); ok {
			return fromEntry(entry, req)
		}
	}
	return fromRequest(req)
}

func fromEntry(e catalog.Entry, req AddRequest) Record {
	rec := Record{
		Title:           e.Title,
		Author:          e.Author,
		ISBN:            req.ISBN,
		ExternalID:      e.ExternalID,
		Genre:           e.Genre,
		PublishedYear:   e.PublishedYear,
		PageCount:       e.PageCount,
		CoverID:         e.CoverID,
		Description:     e.Description,
		Language:        e.Language,
		RatingAvg:       e.RatingAvg,
		RatingCount:     e.RatingCount,
		AvailableOnline: e.AvailableOnline,
	}
	if rec.Title == "" {
		rec.Title = req.Title
	}
	if rec.Author == "" {
		rec.Author = req.Author
	}
	return rec
}

func fromRequest(req AddRequest) Record {
	return Record{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		ExternalID:    req.ExternalID,
		PublishedYear: req.PublishedYear,
		PageCount:     req.Pages,
		Language:      catalog.DefaultLanguage,
	}
}
