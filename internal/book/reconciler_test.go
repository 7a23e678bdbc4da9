package book

import (
	"context"
	"testing"

	"booktrack/internal/catalog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, rec *Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Record), args.Error(1)
}

func (m *mockStore) GetByISBN(ctx context.Context, isbn string) (Record, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(Record), args.Error(1)
}

func (m *mockStore) GetByExternalID(ctx context.Context, externalID string) (Record, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(Record), args.Error(1)
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) LookupISBN(ctx context.Context, isbn string) (catalog.Entry, bool) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(catalog.Entry), args.Bool(1)
}

func TestReconciler_ExistingISBNWins(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	existing := Record{ID: "rec-1", Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"}
	ms.On("GetByISBN", ctx, "9780441013593").Return(existing, nil)

	rec, err := r.Reconcile(ctx, AddRequest{
		Title:  "Different Title",
		Author: "Different Author",
		ISBN:   "9780441013593",
	})
	require.NoError(t, err)
	assert.Equal(t, existing, rec, "existing record wins over request fields")
	ms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "LookupISBN", mock.Anything, mock.Anything)
}

func TestReconciler_ExternalLookupBuildsRecord(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	pages := 412
	ms.On("GetByISBN", ctx, "9780441013593").Return(Record{}, ErrNotFound)
	ml.On("LookupISBN", ctx, "9780441013593").Return(catalog.Entry{
		Title:       "Dune",
		Author:      "Frank Herbert",
		ExternalID:  "/works/OL893415W",
		PageCount:   &pages,
		Description: "Spice.",
		Language:    "en",
	}, true)
	ms.On("GetByExternalID", ctx, "/works/OL893415W").Return(Record{}, ErrNotFound)
	ms.On("Create", ctx, mock.Anything).Return(nil)

	rec, err := r.Reconcile(ctx, AddRequest{
		Title:  "dune (user typed)",
		Author: "f. herbert",
		ISBN:   "9780441013593",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", rec.Title, "external data wins for descriptive fields")
	assert.Equal(t, "Frank Herbert", rec.Author)
	assert.Equal(t, "9780441013593", rec.ISBN, "request ISBN retained")
	assert.Equal(t, 412, *rec.PageCount)
}

func TestReconciler_ExternalIDMatchReturnsExisting(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	existing := Record{ID: "rec-2", Title: "Dune", Author: "Frank Herbert", ExternalID: "/works/OL893415W"}
	ms.On("GetByISBN", ctx, "9780441013593").Return(Record{}, ErrNotFound)
	ml.On("LookupISBN", ctx, "9780441013593").Return(catalog.Entry{
		Title:      "Dune",
		Author:     "Frank Herbert",
		ExternalID: "/works/OL893415W",
	}, true)
	ms.On("GetByExternalID", ctx, "/works/OL893415W").Return(existing, nil)

	rec, err := r.Reconcile(ctx, AddRequest{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"})
	require.NoError(t, err)
	assert.Equal(t, existing, rec)
	ms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReconciler_LookupFailureFallsBackToRequest(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	pages := 200
	ms.On("GetByISBN", ctx, "9780441013593").Return(Record{}, ErrNotFound)
	ml.On("LookupISBN", ctx, "9780441013593").Return(catalog.Entry{}, false)
	ms.On("Create", ctx, mock.Anything).Return(nil)

	rec, err := r.Reconcile(ctx, AddRequest{
		Title:  "My Book",
		Author: "Me",
		ISBN:   "9780441013593",
		Pages:  &pages,
	})
	require.NoError(t, err)
	assert.Equal(t, "My Book", rec.Title)
	assert.Equal(t, "Me", rec.Author)
	assert.Equal(t, 200, *rec.PageCount)
}

func TestReconciler_NoISBNSkipsLookup(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	ms.On("Create", ctx, mock.Anything).Return(nil)

	rec, err := r.Reconcile(ctx, AddRequest{Title: "Untitled Draft", Author: "Anon"})
	require.NoError(t, err)
	assert.Equal(t, "Untitled Draft", rec.Title)
	ms.AssertNotCalled(t, "GetByISBN", mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "LookupISBN", mock.Anything, mock.Anything)
}

func TestReconciler_MissingTitleRejected(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	_, err := r.Reconcile(ctx, AddRequest{Author: "Anon"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReconciler_DuplicateISBNCompensatingRead(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	winner := Record{ID: "rec-3", Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"}

	// First read misses, the insert loses the race, the re-read finds the
	// record the concurrent request created.
	ms.On("GetByISBN", ctx, "9780441013593").Return(Record{}, ErrNotFound).Once()
	ml.On("LookupISBN", ctx, "9780441013593").Return(catalog.Entry{}, false)
	ms.On("Create", ctx, mock.Anything).Return(ErrDuplicate)
	ms.On("GetByISBN", ctx, "9780441013593").Return(winner, nil).Once()

	rec, err := r.Reconcile(ctx, AddRequest{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"})
	require.NoError(t, err)
	assert.Equal(t, winner, rec)
}

func TestReconciler_DuplicateExternalIDCompensatingRead(t *testing.T) {
	ctx := context.Background()
	ms := new(mockStore)
	ml := new(mockLookup)
	r := NewReconciler(ms, ml, zerolog.Nop())

	winner := Record{ID: "rec-4", Title: "Dune", Author: "Frank Herbert", ExternalID: "/works/OL893415W"}

	// No ISBN on either request, so the race lands on the external id index.
	ms.On("GetByExternalID", ctx, "/works/OL893415W").Return(Record{}, ErrNotFound).Once()
	ms.On("Create", ctx, mock.Anything).Return(ErrDuplicate)
	ms.On("GetByExternalID", ctx, "/works/OL893415W").Return(winner, nil).Once()

	rec, err := r.Reconcile(ctx, AddRequest{
		Title:      "Dune",
		Author:     "Frank Herbert",
		ExternalID: "/works/OL893415W",
	})
	require.NoError(t, err)
	assert.Equal(t, winner, rec)
	ms.AssertNotCalled(t, "GetByISBN", mock.Anything, mock.Anything)
}
