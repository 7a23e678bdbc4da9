package book

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

const recordColumns = `
	id, title, author, COALESCE(isbn, ''), COALESCE(external_id, ''), genre,
	published_year, page_count, cover_id, description, language,
	rating_avg, rating_count, available_online, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	const insertSQL = `
		INSERT INTO books (id, title, author, isbn, external_id, genre,
			published_year, page_count, cover_id, description, language,
			rating_avg, rating_count, available_online, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6,
			$7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING created_at, updated_at`

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.db.QueryRow(timeoutCtx, insertSQL,
		rec.ID, rec.Title, rec.Author, rec.ISBN, rec.ExternalID, rec.Genre,
		rec.PublishedYear, rec.PageCount, rec.CoverID, rec.Description, rec.Language,
		rec.RatingAvg, rec.RatingCount, rec.AvailableOnline,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Record, error) {
	return s.getWhere(ctx, "id = $1", id)
}

func (s *PostgresStore) GetByISBN(ctx context.Context, isbn string) (Record, error) {
	return s.getWhere(ctx, "isbn = $1", isbn)
}

func (s *PostgresStore) GetByExternalID(ctx context.Context, externalID string) (Record, error) {
	return s.getWhere(ctx, "external_id = $1", externalID)
}

func (s *PostgresStore) getWhere(ctx context.Context, where string, arg any) (Record, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rec Record
	err := s.db.QueryRow(timeoutCtx,
		"SELECT "+recordColumns+" FROM books WHERE "+where, arg,
	).Scan(
		&rec.ID, &rec.Title, &rec.Author, &rec.ISBN, &rec.ExternalID, &rec.Genre,
		&rec.PublishedYear, &rec.PageCount, &rec.CoverID, &rec.Description, &rec.Language,
		&rec.RatingAvg, &rec.RatingCount, &rec.AvailableOnline, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}
