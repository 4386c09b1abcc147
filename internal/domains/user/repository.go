package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the account side of the catalog store.
type Repository interface {
	// Create inserts a user
	// Returns: ErrUsernameTaken if the username exists
	Create(ctx context.Context, username, favoriteGenre string) (*User, error)

	// FindByID is used to resolve the bearer token subject
	// Returns: ErrUserNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername is used by login
	// Returns: ErrUserNotFound
	FindByUsername(ctx context.Context, username string) (*User, error)
}
