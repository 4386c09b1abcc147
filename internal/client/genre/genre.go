// Package genre derives genre views over book results.
package genre

import (
	"context"
	"sort"

	"library-backend/internal/client/catalog"
)

// DistinctGenres flattens every book's genres into a set, returned sorted.
func DistinctGenres(rows []catalog.Book) []string {
	set := make(map[string]struct{})
	for _, b := range rows {
		for _, g := range b.Genres {
			set[g] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// BookQuerier runs allBooks on the server.
type BookQuerier interface {
	AllBooks(ctx context.Context, genre *string) ([]catalog.Book, error)
}

// FilterByGenre asks the server, never the cache, so the view covers the
// whole catalog. A nil genre returns the unfiltered list.
func FilterByGenre(ctx context.Context, q BookQuerier, genre *string) ([]catalog.Book, error) {
	return q.AllBooks(ctx, genre)
}
