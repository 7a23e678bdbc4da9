package library

import (
	"context"
	"errors"
	"strings"
	"time"

	"booktrack/internal/book"

	"github.com/rs/zerolog"
)

// AddBookRequest is the service-level add operation input.
type AddBookRequest struct {
	Title         string
	Author        string
	ISBN          string
	ExternalID    string
	Pages         *int
	PublishedYear *int
	Status        string
}

// Service orchestrates library membership, progress updates and the derived
// summary. Every mutation recomputes the owner's summary inside the same
// transaction.
type Service struct {
	store      Store
	reconciler Reconciler
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(store Store, reconciler Reconciler, log zerolog.Logger) *Service {
	return &Service{store: store, reconciler: reconciler, log: log, now: time.Now}
}

// AddBook resolves the request to a catalog record and tracks it for the
// user. Adding an already-tracked book returns ErrAlreadyTracked.
func (s *Service) AddBook(ctx context.Context, userID string, req AddBookRequest) (Item, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
		return Item{}, book.ErrValidation
	}
	status := req.Status
	if status == "" {
		status = StatusWantToRead
	}
	if err := ValidateStatus(status); err != nil {
		return Item{}, err
	}

	rec, err := s.reconciler.Reconcile(ctx, book.AddRequest{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		ExternalID:    req.ExternalID,
		Pages:         req.Pages,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		return Item{}, err
	}

	tb := TrackedBook{
		UserID:  userID,
		BookID:  rec.ID,
		Status:  status,
		AddedAt: s.now(),
	}
	err = s.store.InTx(ctx, func(tx Store) error {
		if err := tx.CreateTracked(ctx, &tb); err != nil {
			return err
		}
		return s.recompute(ctx, tx, userID)
	})
	if err != nil {
		return Item{}, err
	}

	s.log.Info().Str("user_id", userID).Str("book_id", rec.ID).Msg("book added to library")
	return Item{TrackedBook: tb, Book: rec}, nil
}

// UpdateProgress applies a page-progress update to one of the user's tracked
// books and recomputes the summary in the same transaction.
func (s *Service) UpdateProgress(ctx context.Context, userID, trackedID string, page int) (TrackedBook, error) {
	var tb TrackedBook
	err := s.store.InTx(ctx, func(tx Store) error {
		var total *int
		var err error
		tb, total, err = tx.GetTracked(ctx, trackedID)
		if err != nil {
			return err
		}
		if tb.UserID != userID {
			return ErrNotFound
		}

		ApplyProgress(&tb, page, total, s.now())
		if err := tx.UpdateTracked(ctx, &tb); err != nil {
			return err
		}
		return s.recompute(ctx, tx, userID)
	})
	if err != nil {
		return TrackedBook{}, err
	}

	s.log.Debug().Str("user_id", userID).Str("tracked_id", trackedID).
		Int("page", page).Str("status", tb.Status).Msg("progress updated")
	return tb, nil
}

// RateBook records the user's star rating and optional review text for a
// tracked book. Neither field feeds the summary, so no recompute runs.
func (s *Service) RateBook(ctx context.Context, userID, trackedID string, rating int, review *string) (TrackedBook, error) {
	if rating < 1 || rating > 5 {
		return TrackedBook{}, ErrInvalidRating
	}
	var tb TrackedBook
	err := s.store.InTx(ctx, func(tx Store) error {
		var err error
		tb, _, err = tx.GetTracked(ctx, trackedID)
		if err != nil {
			return err
		}
		if tb.UserID != userID {
			return ErrNotFound
		}
		tb.Rating = &rating
		if review != nil {
			tb.Review = review
		}
		return tx.UpdateTracked(ctx, &tb)
	})
	if err != nil {
		return TrackedBook{}, err
	}

	s.log.Debug().Str("user_id", userID).Str("tracked_id", trackedID).
		Int("rating", rating).Msg("book rated")
	return tb, nil
}

const defaultTrendsDays = 30

// ReadingTrends reports reading activity over the trailing number of days.
func (s *Service) ReadingTrends(ctx context.Context, userID string, days int) (Trends, error) {
	if days <= 0 {
		days = defaultTrendsDays
	}
	items, err := s.store.ListByUser(ctx, userID, "")
	if err != nil {
		return Trends{}, err
	}
	books := make([]TrackedBook, len(items))
	for i, it := range items {
		books[i] = it.TrackedBook
	}
	return ComputeTrends(books, days, s.now()), nil
}

// CurrentlyReading returns the user's most recently added in-progress book.
func (s *Service) CurrentlyReading(ctx context.Context, userID string) (Item, bool, error) {
	items, err := s.store.ListByUser(ctx, userID, StatusReading)
	if err != nil {
		return Item{}, false, err
	}
	if len(items) == 0 {
		return Item{}, false, nil
	}
	return items[0], true, nil
}

// ListBooks returns the user's tracked books, optionally filtered by status.
func (s *Service) ListBooks(ctx context.Context, userID, status string) ([]Item, error) {
	if status != "" {
		if err := ValidateStatus(status); err != nil {
			return nil, err
		}
	}
	return s.store.ListByUser(ctx, userID, status)
}

// Stats returns the user's summary, creating it lazily on first access.
func (s *Service) Stats(ctx context.Context, userID string) (Summary, error) {
	sum, err := s.store.GetSummary(ctx, userID)
	if err == nil {
		return sum, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Summary{}, err
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		if err := s.recompute(ctx, tx, userID); err != nil {
			return err
		}
		sum, err = tx.GetSummary(ctx, userID)
		return err
	})
	return sum, err
}

// recompute overwrites the user's summary from the live tracked set.
func (s *Service) recompute(ctx context.Context, tx Store, userID string) error {
	items, err := tx.ListByUser(ctx, userID, "")
	if err != nil {
		return err
	}
	books := make([]TrackedBook, len(items))
	for i, it := range items {
		books[i] = it.TrackedBook
	}
	sum := Recompute(userID, books, s.now())
	return tx.SaveSummary(ctx, &sum)
}
