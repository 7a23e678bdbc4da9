package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"booktrack/internal/book"
	"booktrack/internal/httpx"
	"booktrack/internal/library"
)

// LibraryService is the library-facing surface of the core.
type LibraryService interface {
	AddBook(ctx context.Context, userID string, req library.AddBookRequest) (library.Item, error)
	UpdateProgress(ctx context.Context, userID, trackedID string, page int) (library.TrackedBook, error)
	RateBook(ctx context.Context, userID, trackedID string, rating int, review *string) (library.TrackedBook, error)
	ListBooks(ctx context.Context, userID, status string) ([]library.Item, error)
	CurrentlyReading(ctx context.Context, userID string) (library.Item, bool, error)
	ReadingTrends(ctx context.Context, userID string, days int) (library.Trends, error)
	Stats(ctx context.Context, userID string) (library.Summary, error)
}

type LibraryHandler struct {
	svc LibraryService
}

func NewLibraryHandler(svc LibraryService) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

type addBookRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	Author        string `json:"author" validate:"required,max=255"`
	ISBN          string `json:"isbn" validate:"omitempty,isbn"`
	ExternalID    string `json:"external_id"`
	Pages         *int   `json:"pages" validate:"omitempty,gte=1"`
	PublishedYear *int   `json:"published_year"`
	Status        string `json:"status" validate:"omitempty,oneof=WANT_TO_READ READING READ"`
}

type updateProgressRequest struct {
	CurrentPage *int `json:"current_page" validate:"required,gte=0"`
}

type rateBookRequest struct {
	Rating int     `json:"rating" validate:"required,gte=1,lte=5"`
	Review *string `json:"review" validate:"omitempty,max=2000"`
}

type statsResponse struct {
	library.Summary
	CompletionRate float64 `json:"completion_rate"`
}

// AddBook handles POST /library/books.
func (h *LibraryHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)

	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request body", nil)
		return
	}
	if details := validateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "validation failed", details)
		return
	}

	item, err := h.svc.AddBook(r.Context(), userID, library.AddBookRequest{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		ExternalID:    req.ExternalID,
		Pages:         req.Pages,
		PublishedYear: req.PublishedYear,
		Status:        req.Status,
	})
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	httpx.JSONSuccessCreated(w, item)
}

// UpdateProgress handles PUT /library/books/{id}/progress.
func (h *LibraryHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)

	trackedID := strings.TrimPrefix(r.URL.Path, "/library/books/")
	trackedID = strings.TrimSuffix(trackedID, "/progress")
	if trackedID == "" || strings.Contains(trackedID, "/") {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "unknown path", nil)
		return
	}

	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request body", nil)
		return
	}
	if details := validateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "validation failed", details)
		return
	}

	tb, err := h.svc.UpdateProgress(r.Context(), userID, trackedID, *req.CurrentPage)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	httpx.JSONSuccess(w, tb, nil)
}

// RateBook handles PUT /library/books/{id}/rating.
func (h *LibraryHandler) RateBook(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)

	trackedID := strings.TrimPrefix(r.URL.Path, "/library/books/")
	trackedID = strings.TrimSuffix(trackedID, "/rating")
	if trackedID == "" || strings.Contains(trackedID, "/") {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "unknown path", nil)
		return
	}

	var req rateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request body", nil)
		return
	}
	if details := validateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "validation failed", details)
		return
	}

	tb, err := h.svc.RateBook(r.Context(), userID, trackedID, req.Rating, req.Review)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	httpx.JSONSuccess(w, tb, nil)
}

// CurrentlyReading handles GET /library/reading. An empty library is a
// success with no data, not an error.
func (h *LibraryHandler) CurrentlyReading(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)

	item, ok, err := h.svc.CurrentlyReading(r.Context(), userID)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	if !ok {
		httpx.JSONSuccess(w, nil, nil)
		return
	}
	httpx.JSONSuccess(w, item, nil)
}

// Trends handles GET /library/trends?days=.
func (h *LibraryHandler) Trends(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	days := queryInt(r, "days", 0)

	trends, err := h.svc.ReadingTrends(r.Context(), userID, days)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	httpx.JSONSuccess(w, trends, nil)
}

// ListBooks handles GET /library/books?status=.
func (h *LibraryHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	status := r.URL.Query().Get("status")

	items, err := h.svc.ListBooks(r.Context(), userID, status)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	httpx.JSONSuccess(w, items, map[string]any{"count": len(items)})
}

// Stats handles GET /library/stats.
func (h *LibraryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)

	sum, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	httpx.JSONSuccess(w, statsResponse{Summary: sum, CompletionRate: sum.CompletionRate()}, nil)
}

func writeLibraryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrValidation):
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, library.ErrAlreadyTracked):
		httpx.JSONError(w, http.StatusConflict, "ALREADY_TRACKED", err.Error(), nil)
	case errors.Is(err, library.ErrNotFound), errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, library.ErrInvalidStatus), errors.Is(err, library.ErrInvalidRating):
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
