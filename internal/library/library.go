package library

import (
	"errors"
	"fmt"
	"time"

	"booktrack/internal/book"
)

const (
	StatusWantToRead = "WANT_TO_READ"
	StatusReading    = "READING"
	StatusRead       = "READ"
)

func ValidateStatus(status string) error {
	switch status {
	case StatusWantToRead, StatusReading, StatusRead:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
}

var (
	// ErrInvalidStatus is returned for a status outside the three known values.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrAlreadyTracked is returned when a user adds a book already in their
	// library; the membership is unique per (user, record) pair.
	ErrAlreadyTracked = errors.New("book already in library")
	// ErrNotFound is returned for progress updates against an untracked book.
	ErrNotFound = errors.New("book not found in library")
	// ErrInvalidRating is returned for a star rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// TrackedBook is one user's membership of a catalog record, with reading
// state. Created on add, mutated by progress updates, never deleted here.
type TrackedBook struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	BookID      string     `json:"book_id"`
	Status      string     `json:"status"`
	CurrentPage int        `json:"current_page"`
	Rating      *int       `json:"rating,omitempty"`
	Review      *string    `json:"review,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	AddedAt     time.Time  `json:"added_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Item pairs a tracked book with its catalog record for read surfaces.
type Item struct {
	TrackedBook
	Book book.Record `json:"book"`
}

// Summary is the derived per-user aggregate. It is a recomputed cache over
// the live tracked set, overwritten wholesale on every relevant mutation.
type Summary struct {
	UserID         string    `json:"user_id"`
	TotalBooks     int       `json:"total_books"`
	BooksRead      int       `json:"books_read"`
	BooksReading   int       `json:"books_reading"`
	BooksToRead    int       `json:"books_to_read"`
	TotalPagesRead int       `json:"total_pages_read"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Trends is reading activity over a trailing window of days.
type Trends struct {
	WindowDays     int     `json:"window_days"`
	TotalBooksRead int     `json:"total_books_read"`
	BooksFinished  int     `json:"books_finished"`
	AvgPagesPerDay float64 `json:"avg_pages_per_day"`
}

// CompletionRate returns the read share as a percentage, computed on read.
func (s Summary) CompletionRate() float64 {
	if s.TotalBooks == 0 {
		return 0.0
	}
	return float64(s.BooksRead) / float64(s.TotalBooks) * 100
}
