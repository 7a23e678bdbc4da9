package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"booktrack/internal/catalog"
	"booktrack/internal/httpx"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// CatalogService is the read side of the external catalog.
type CatalogService interface {
	Search(ctx context.Context, query string, page, limit int) []catalog.Entry
	Trending(ctx context.Context) []catalog.Entry
	GetByID(ctx context.Context, id string) (catalog.Entry, bool)
	LookupISBN(ctx context.Context, isbn string) (catalog.Entry, bool)
}

type CatalogHandler struct {
	svc CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Search handles GET /books/search?q=&page=&limit=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "query parameter q is required", nil)
		return
	}
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", defaultSearchLimit)
	if limit < 1 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	entries := h.svc.Search(r.Context(), q, page, limit)
	httpx.JSONSuccess(w, entries, map[string]any{"page": page, "limit": limit, "count": len(entries)})
}

// Trending handles GET /books/trending.
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Trending(r.Context())
	httpx.JSONSuccess(w, entries, map[string]any{"count": len(entries)})
}

// GetByISBN handles GET /books/isbn/{isbn}.
func (h *CatalogHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := strings.TrimPrefix(r.URL.Path, "/books/isbn/")
	if isbn == "" || strings.Contains(isbn, "/") {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "isbn is required", nil)
		return
	}

	entry, ok := h.svc.LookupISBN(r.Context(), isbn)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "book not found", nil)
		return
	}
	httpx.JSONSuccess(w, entry, nil)
}

// GetByID handles GET /books/{id} where id is the provider key, e.g.
// "works/OL45883W".
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/books/")
	if id == "" || id == "search" {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "book id is required", nil)
		return
	}

	entry, ok := h.svc.GetByID(r.Context(), "/"+strings.TrimPrefix(id, "/"))
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "book not found", nil)
		return
	}
	httpx.JSONSuccess(w, entry, nil)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
