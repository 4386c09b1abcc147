package author

import (
	"context"
)

// Repository is the author side of the catalog store.
type Repository interface {
	// FindAll returns every author in insertion order.
	FindAll(ctx context.Context) ([]Author, error)

	// FindByName does an exact, case-sensitive lookup.
	// When several authors share the name the oldest one wins.
	// Returns: ErrAuthorNotFound if none matches
	FindByName(ctx context.Context, name string) (*Author, error)

	// Insert creates a new author. It never deduplicates by name.
	Insert(ctx context.Context, name string, born *int) (*Author, error)

	// UpdateBorn overwrites born on the author FindByName would return.
	// Returns: ErrAuthorNotFound if none matches
	UpdateBorn(ctx context.Context, name string, born int) (*Author, error)

	Count(ctx context.Context) (int, error)
}
