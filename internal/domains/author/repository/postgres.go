package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/author"
)

// postgresRepository implements author.Repository on pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new author repository instance
func NewPostgresRepository(pool *pgxpool.Pool) author.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) FindAll(ctx context.Context) ([]author.Author, error) {
	query := `
        SELECT id, name, born
        FROM authors
        ORDER BY created_at, id
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]author.Author, 0)
	for rows.Next() {
		var a author.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Born); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}

	return authors, rows.Err()
}

func (r *postgresRepository) FindByName(ctx context.Context, name string) (*author.Author, error) {
	query := `
        SELECT id, name, born
        FROM authors
        WHERE name = $1
        ORDER BY created_at, id
        LIMIT 1
    `

	var a author.Author
	err := r.pool.QueryRow(ctx, query, name).Scan(&a.ID, &a.Name, &a.Born)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by name: %w", err)
	}

	return &a, nil
}

func (r *postgresRepository) Insert(ctx context.Context, name string, born *int) (*author.Author, error) {
	query := `
        INSERT INTO authors (id, name, born)
        VALUES ($1, $2, $3)
        RETURNING id, name, born
    `

	var created author.Author
	err := r.pool.QueryRow(ctx, query, uuid.New(), name, born).
		Scan(&created.ID, &created.Name, &created.Born)
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	return &created, nil
}

func (r *postgresRepository) UpdateBorn(ctx context.Context, name string, born int) (*author.Author, error) {
	query := `
        UPDATE authors
        SET born = $2
        WHERE id = (
            SELECT id FROM authors
            WHERE name = $1
            ORDER BY created_at, id
            LIMIT 1
        )
        RETURNING id, name, born
    `

	var updated author.Author
	err := r.pool.QueryRow(ctx, query, name, born).
		Scan(&updated.ID, &updated.Name, &updated.Born)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	return &updated, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return count, nil
}
