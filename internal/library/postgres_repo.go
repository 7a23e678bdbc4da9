package library

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same store
// code runs inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db   querier
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool, pool: pool}
}

// InTx runs fn against a store bound to a single transaction. A store that
// is already transactional joins the enclosing transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) CreateTracked(ctx context.Context, tb *TrackedBook) error {
	const insertSQL = `
		INSERT INTO user_books (id, user_id, book_id, status, current_page,
			rating, review, started_at, finished_at, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING updated_at`

	if tb.ID == "" {
		tb.ID = uuid.NewString()
	}
	err := s.db.QueryRow(ctx, insertSQL,
		tb.ID, tb.UserID, tb.BookID, tb.Status, tb.CurrentPage,
		tb.Rating, tb.Review, tb.StartedAt, tb.FinishedAt, tb.AddedAt,
	).Scan(&tb.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyTracked
		}
		return err
	}
	return nil
}

func (s *PostgresStore) UpdateTracked(ctx context.Context, tb *TrackedBook) error {
	const updateSQL = `
		UPDATE user_books
		SET status = $2, current_page = $3, rating = $4, review = $5,
			started_at = $6, finished_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := s.db.QueryRow(ctx, updateSQL,
		tb.ID, tb.Status, tb.CurrentPage, tb.Rating, tb.Review,
		tb.StartedAt, tb.FinishedAt,
	).Scan(&tb.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// GetTracked returns the tracked book and its record's page count, fetched
// together so the progress state machine sees a consistent pair.
func (s *PostgresStore) GetTracked(ctx context.Context, id string) (TrackedBook, *int, error) {
	const querySQL = `
		SELECT ub.id, ub.user_id, ub.book_id, ub.status, ub.current_page,
			ub.rating, ub.review, ub.started_at, ub.finished_at, ub.added_at, ub.updated_at,
			b.page_count
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.id = $1`

	var tb TrackedBook
	var pageCount *int
	err := s.db.QueryRow(ctx, querySQL, id).Scan(
		&tb.ID, &tb.UserID, &tb.BookID, &tb.Status, &tb.CurrentPage,
		&tb.Rating, &tb.Review, &tb.StartedAt, &tb.FinishedAt, &tb.AddedAt, &tb.UpdatedAt,
		&pageCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TrackedBook{}, nil, ErrNotFound
		}
		return TrackedBook{}, nil, err
	}
	return tb, pageCount, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID, status string) ([]Item, error) {
	querySQL := `
		SELECT ub.id, ub.user_id, ub.book_id, ub.status, ub.current_page,
			ub.rating, ub.review, ub.started_at, ub.finished_at, ub.added_at, ub.updated_at,
			b.id, b.title, b.author, COALESCE(b.isbn, ''), COALESCE(b.external_id, ''), b.genre,
			b.published_year, b.page_count, b.cover_id, b.description, b.language,
			b.rating_avg, b.rating_count, b.available_online, b.created_at, b.updated_at
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = $1`
	args := []any{userID}
	if status != "" {
		querySQL += " AND ub.status = $2"
		args = append(args, status)
	}
	querySQL += " ORDER BY ub.added_at DESC"

	rows, err := s.db.Query(ctx, querySQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.BookID, &it.Status, &it.CurrentPage,
			&it.Rating, &it.Review, &it.StartedAt, &it.FinishedAt, &it.AddedAt, &it.UpdatedAt,
			&it.Book.ID, &it.Book.Title, &it.Book.Author, &it.Book.ISBN, &it.Book.ExternalID, &it.Book.Genre,
			&it.Book.PublishedYear, &it.Book.PageCount, &it.Book.CoverID, &it.Book.Description, &it.Book.Language,
			&it.Book.RatingAvg, &it.Book.RatingCount, &it.Book.AvailableOnline, &it.Book.CreatedAt, &it.Book.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresStore) SaveSummary(ctx context.Context, sum *Summary) error {
	const upsertSQL = `
		INSERT INTO libraries (id, user_id, total_books, books_read,
			books_reading, books_to_read, total_pages_read, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			total_books = EXCLUDED.total_books,
			books_read = EXCLUDED.books_read,
			books_reading = EXCLUDED.books_reading,
			books_to_read = EXCLUDED.books_to_read,
			total_pages_read = EXCLUDED.total_pages_read,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.Exec(ctx, upsertSQL,
		uuid.NewString(), sum.UserID, sum.TotalBooks, sum.BooksRead,
		sum.BooksReading, sum.BooksToRead, sum.TotalPagesRead, sum.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetSummary(ctx context.Context, userID string) (Summary, error) {
	const querySQL = `
		SELECT user_id, total_books, books_read, books_reading, books_to_read,
			total_pages_read, updated_at
		FROM libraries
		WHERE user_id = $1`

	var sum Summary
	err := s.db.QueryRow(ctx, querySQL, userID).Scan(
		&sum.UserID, &sum.TotalBooks, &sum.BooksRead, &sum.BooksReading,
		&sum.BooksToRead, &sum.TotalPagesRead, &sum.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Summary{}, ErrNotFound
		}
		return Summary{}, err
	}
	return sum, nil
}
