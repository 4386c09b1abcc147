package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book"
)

// postgresRepository implements book.Repository with raw SQL on pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) book.Repository {
	return &postgresRepository{pool: pool}
}

const selectBooks = `
		SELECT
			b.id,
			b.title,
			b.published,
			b.genres,
			a.id,
			a.name,
			a.born
		FROM books b
		JOIN authors a ON b.author_id = a.id
`

// Find - dynamic WHERE built from the non-nil filter fields
func (r *postgresRepository) Find(ctx context.Context, filter book.Filter) ([]book.Book, error) {
	var whereConditions []string
	var args []interface{}
	argIndex := 1

	if filter.AuthorID != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("b.author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	if filter.Genre != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("$%d = ANY(b.genres)", argIndex))
		args = append(args, *filter.Genre)
		argIndex++
	}

	query := selectBooks
	if len(whereConditions) > 0 {
		query += " WHERE " + strings.Join(whereConditions, " AND ")
	}
	query += " ORDER BY b.created_at, b.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]book.Book, 0)
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Published,
			&b.Genres,
			&b.Author.ID,
			&b.Author.Name,
			&b.Author.Born,
		); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		if b.Genres == nil {
			b.Genres = []string{}
		}
		books = append(books, b)
	}

	return books, rows.Err()
}

// Insert writes the book and returns it with the author resolved.
func (r *postgresRepository) Insert(ctx context.Context, nb book.NewBook) (*book.Book, error) {
	genres := nb.Genres
	if genres == nil {
		genres = []string{}
	}

	query := `
		WITH inserted AS (
			INSERT INTO books (id, title, published, author_id, genres)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, title, published, genres, author_id
		)
		SELECT i.id, i.title, i.published, i.genres, a.id, a.name, a.born
		FROM inserted i
		JOIN authors a ON a.id = i.author_id
	`

	var b book.Book
	err := r.pool.QueryRow(ctx, query, uuid.New(), nb.Title, nb.Published, nb.AuthorID, genres).Scan(
		&b.ID,
		&b.Title,
		&b.Published,
		&b.Genres,
		&b.Author.ID,
		&b.Author.Name,
		&b.Author.Born,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return nil, book.ErrAuthorMissing
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return &b, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}
