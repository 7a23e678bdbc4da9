package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"booktrack/internal/httpx"
	"booktrack/internal/library"
	"booktrack/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLibraryService struct {
	mock.Mock
}

func (m *mockLibraryService) AddBook(ctx context.Context, userID string, req library.AddBookRequest) (library.Item, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(library.Item), args.Error(1)
}

func (m *mockLibraryService) UpdateProgress(ctx context.Context, userID, trackedID string, page int) (library.TrackedBook, error) {
	args := m.Called(ctx, userID, trackedID, page)
	return args.Get(0).(library.TrackedBook), args.Error(1)
}

func (m *mockLibraryService) RateBook(ctx context.Context, userID, trackedID string, rating int, review *string) (library.TrackedBook, error) {
	args := m.Called(ctx, userID, trackedID, rating, review)
	return args.Get(0).(library.TrackedBook), args.Error(1)
}

func (m *mockLibraryService) CurrentlyReading(ctx context.Context, userID string) (library.Item, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(library.Item), args.Bool(1), args.Error(2)
}

func (m *mockLibraryService) ReadingTrends(ctx context.Context, userID string, days int) (library.Trends, error) {
	args := m.Called(ctx, userID, days)
	return args.Get(0).(library.Trends), args.Error(1)
}

func (m *mockLibraryService) ListBooks(ctx context.Context, userID, status string) ([]library.Item, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.Item), args.Error(1)
}

func (m *mockLibraryService) Stats(ctx context.Context, userID string) (library.Summary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(library.Summary), args.Error(1)
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), userID))
}

func TestLibraryHandler_AddBook(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		setupMock      func(m *mockLibraryService)
		expectedStatus int
	}{
		{
			name: "created",
			body: map[string]any{"title": "Dune", "author": "Frank Herbert", "isbn": "9780441013593"},
			setupMock: func(m *mockLibraryService) {
				m.On("AddBook", mock.Anything, "user-1", mock.Anything).
					Return(library.Item{TrackedBook: library.TrackedBook{ID: "tb-1"}}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           map[string]any{"author": "Frank Herbert"},
			setupMock:      func(m *mockLibraryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid isbn",
			body:           map[string]any{"title": "Dune", "author": "Frank Herbert", "isbn": "junk"},
			setupMock:      func(m *mockLibraryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "already tracked",
			body: map[string]any{"title": "Dune", "author": "Frank Herbert"},
			setupMock: func(m *mockLibraryService) {
				m.On("AddBook", mock.Anything, "user-1", mock.Anything).
					Return(library.Item{}, library.ErrAlreadyTracked)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockLibraryService)
			tt.setupMock(svc)
			h := NewLibraryHandler(svc)

			w := httptest.NewRecorder()
			r := asUser(testutil.NewRequest(http.MethodPost, "/library/books", tt.body), "user-1")
			h.AddBook(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestLibraryHandler_UpdateProgress(t *testing.T) {
	svc := new(mockLibraryService)
	svc.On("UpdateProgress", mock.Anything, "user-1", "tb-1", 42).
		Return(library.TrackedBook{ID: "tb-1", Status: library.StatusReading, CurrentPage: 42}, nil)
	h := NewLibraryHandler(svc)

	w := httptest.NewRecorder()
	r := asUser(testutil.NewRequest(http.MethodPut, "/library/books/tb-1/progress",
		map[string]any{"current_page": 42}), "user-1")
	h.UpdateProgress(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeBody(w)
	data := body["data"].(map[string]any)
	assert.Equal(t, "READING", data["status"])
}

func TestLibraryHandler_UpdateProgress_Errors(t *testing.T) {
	t.Run("negative page rejected", func(t *testing.T) {
		svc := new(mockLibraryService)
		h := NewLibraryHandler(svc)

		w := httptest.NewRecorder()
		r := asUser(testutil.NewRequest(http.MethodPut, "/library/books/tb-1/progress",
			map[string]any{"current_page": -1}), "user-1")
		h.UpdateProgress(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("untracked book", func(t *testing.T) {
		svc := new(mockLibraryService)
		svc.On("UpdateProgress", mock.Anything, "user-1", "nope", 1).
			Return(library.TrackedBook{}, library.ErrNotFound)
		h := NewLibraryHandler(svc)

		w := httptest.NewRecorder()
		r := asUser(testutil.NewRequest(http.MethodPut, "/library/books/nope/progress",
			map[string]any{"current_page": 1}), "user-1")
		h.UpdateProgress(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLibraryHandler_RateBook(t *testing.T) {
	svc := new(mockLibraryService)
	five := 5
	svc.On("RateBook", mock.Anything, "user-1", "tb-1", 5, mock.Anything).
		Return(library.TrackedBook{ID: "tb-1", Rating: &five}, nil)
	h := NewLibraryHandler(svc)

	w := httptest.NewRecorder()
	r := asUser(testutil.NewRequest(http.MethodPut, "/library/books/tb-1/rating",
		map[string]any{"rating": 5, "review": "Loved it."}), "user-1")
	h.RateBook(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	data := testutil.DecodeBody(w)["data"].(map[string]any)
	assert.Equal(t, float64(5), data["rating"])
}

func TestLibraryHandler_RateBook_OutOfRange(t *testing.T) {
	svc := new(mockLibraryService)
	h := NewLibraryHandler(svc)

	w := httptest.NewRecorder()
	r := asUser(testutil.NewRequest(http.MethodPut, "/library/books/tb-1/rating",
		map[string]any{"rating": 6}), "user-1")
	h.RateBook(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "RateBook",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLibraryHandler_CurrentlyReading(t *testing.T) {
	t.Run("in progress", func(t *testing.T) {
		svc := new(mockLibraryService)
		svc.On("CurrentlyReading", mock.Anything, "user-1").
			Return(library.Item{TrackedBook: library.TrackedBook{ID: "tb-1", Status: library.StatusReading}}, true, nil)
		h := NewLibraryHandler(svc)

		w := httptest.NewRecorder()
		h.CurrentlyReading(w, asUser(testutil.NewRequest(http.MethodGet, "/library/reading", nil), "user-1"))

		assert.Equal(t, http.StatusOK, w.Code)
		data := testutil.DecodeBody(w)["data"].(map[string]any)
		assert.Equal(t, "READING", data["status"])
	})

	t.Run("nothing in progress", func(t *testing.T) {
		svc := new(mockLibraryService)
		svc.On("CurrentlyReading", mock.Anything, "user-1").
			Return(library.Item{}, false, nil)
		h := NewLibraryHandler(svc)

		w := httptest.NewRecorder()
		h.CurrentlyReading(w, asUser(testutil.NewRequest(http.MethodGet, "/library/reading", nil), "user-1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, testutil.DecodeBody(w)["data"])
	})
}

func TestLibraryHandler_Trends(t *testing.T) {
	svc := new(mockLibraryService)
	svc.On("ReadingTrends", mock.Anything, "user-1", 7).
		Return(library.Trends{WindowDays: 7, TotalBooksRead: 2, BooksFinished: 1, AvgPagesPerDay: 40}, nil)
	h := NewLibraryHandler(svc)

	w := httptest.NewRecorder()
	h.Trends(w, asUser(testutil.NewRequest(http.MethodGet, "/library/trends?days=7", nil), "user-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	data := testutil.DecodeBody(w)["data"].(map[string]any)
	assert.Equal(t, float64(7), data["window_days"])
	assert.Equal(t, float64(40), data["avg_pages_per_day"])
}

func TestLibraryHandler_Stats(t *testing.T) {
	svc := new(mockLibraryService)
	svc.On("Stats", mock.Anything, "user-1").Return(library.Summary{
		UserID: "user-1", TotalBooks: 4, BooksRead: 1,
	}, nil)
	h := NewLibraryHandler(svc)

	w := httptest.NewRecorder()
	r := asUser(testutil.NewRequest(http.MethodGet, "/library/stats", nil), "user-1")
	h.Stats(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	data := testutil.DecodeBody(w)["data"].(map[string]any)
	assert.Equal(t, float64(4), data["total_books"])
	assert.Equal(t, float64(25), data["completion_rate"])
}
