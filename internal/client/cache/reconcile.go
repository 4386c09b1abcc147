package cache

import (
	"library-backend/internal/client/catalog"
)

// CachedQueryResult is a client-held snapshot. No two rows share a title.
type CachedQueryResult struct {
	Identity QueryIdentity
	Rows     []catalog.Book
}

// Titles returns the row titles in order.
func (r CachedQueryResult) Titles() []string {
	out := make([]string, len(r.Rows))
	for i := range r.Rows {
		out[i] = r.Rows[i].Title
	}
	return out
}

// Reconcile appends incoming and deduplicates by title, keeping the first
// row seen for each title. The inputs are not modified and incoming is
// copied, never stored by reference.
//
// A title collision means the existing row wins and incoming stays invisible
// in this view until the next refetch. Applying the same book twice is the
// same as applying it once.
func Reconcile(result CachedQueryResult, incoming catalog.Book) CachedQueryResult {
	combined := make([]catalog.Book, 0, len(result.Rows)+1)
	combined = append(combined, result.Rows...)
	combined = append(combined, cloneBook(incoming))

	return CachedQueryResult{
		Identity: result.Identity,
		Rows:     dedupByTitle(combined),
	}
}

func dedupByTitle(rows []catalog.Book) []catalog.Book {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if _, dup := seen[row.Title]; dup {
			continue
		}
		seen[row.Title] = struct{}{}
		out = append(out, row)
	}
	return out
}
