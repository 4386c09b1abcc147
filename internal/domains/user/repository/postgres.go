package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	user "library-backend/internal/domains/user"
)

// postgresRepository implements user.Repository
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns the interface so callers depend on the abstraction
func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, username, favoriteGenre string) (*user.User, error) {
	query := `
		INSERT INTO users (id, username, favorite_genre)
		VALUES ($1, $2, $3)
		RETURNING id, username, favorite_genre
	`

	var u user.User
	err := r.pool.QueryRow(ctx, query, uuid.New(), username, favoriteGenre).
		Scan(&u.ID, &u.Username, &u.FavoriteGenre)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, user.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &u, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT id, username, favorite_genre FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT id, username, favorite_genre FROM users WHERE username = $1`
	return r.findOne(ctx, query, username)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.FavoriteGenre)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
