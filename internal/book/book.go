package book

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicate is returned by the store when an insert collides with an
	// existing non-null ISBN or external id.
	ErrDuplicate = errors.New("duplicate book record")
	// ErrValidation is returned when a request lacks mandatory fields.
	ErrValidation = errors.New("title and author are required")
)

// Record is the persisted, deduplicated catalog record. At most one record
// exists per non-empty ISBN and per non-empty external id.
type Record struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn,omitempty"`
	ExternalID      string    `json:"external_id,omitempty"`
	Genre           string    `json:"genre,omitempty"`
	PublishedYear   *int      `json:"published_year,omitempty"`
	PageCount       *int      `json:"page_count,omitempty"`
	CoverID         string    `json:"cover_id,omitempty"`
	Description     string    `json:"description,omitempty"`
	Language        string    `json:"language,omitempty"`
	RatingAvg       float64   `json:"rating_avg"`
	RatingCount     int       `json:"rating_count"`
	AvailableOnline bool      `json:"available_online"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AddRequest is a user-supplied request to add a book. Title and author are
// mandatory when the record has to be built from the request itself.
type AddRequest struct {
	Title         string
	Author        string
	ISBN          string
	ExternalID    string
	Pages         *int
	PublishedYear *int
}
