package book

import (
	"context"
)

// Repository is the book side of the catalog store.
type Repository interface {
	// Find returns the books matching filter in insertion order, each with
	// its author resolved.
	Find(ctx context.Context, filter Filter) ([]Book, error)

	// Insert always creates a new book; titles are not deduplicated.
	// Returns: ErrAuthorMissing if AuthorID does not reference an author
	Insert(ctx context.Context, nb NewBook) (*Book, error)

	Count(ctx context.Context) (int, error)
}
