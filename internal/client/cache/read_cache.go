package cache

import (
	"sync"

	"library-backend/internal/client/catalog"
)

// ReadCache holds one snapshot per query identity for the session lifetime.
// There is no eviction and no TTL; Reset discards everything.
type ReadCache struct {
	mu      sync.RWMutex
	entries map[QueryIdentity]CachedQueryResult
}

func NewReadCache() *ReadCache {
	return &ReadCache{entries: make(map[QueryIdentity]CachedQueryResult)}
}

// Store replaces the snapshot for id wholesale. Rows are deduplicated by
// title on the way in.
func (c *ReadCache) Store(id QueryIdentity, rows []catalog.Book) CachedQueryResult {
	result := CachedQueryResult{Identity: id, Rows: dedupByTitle(cloneRows(rows))}

	c.mu.Lock()
	c.entries[id] = result
	c.mu.Unlock()

	return CachedQueryResult{Identity: id, Rows: cloneRows(result.Rows)}
}

// Get returns a copy of the snapshot for id.
func (c *ReadCache) Get(id QueryIdentity) (CachedQueryResult, bool) {
	c.mu.RLock()
	result, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return CachedQueryResult{}, false
	}
	return CachedQueryResult{Identity: id, Rows: cloneRows(result.Rows)}, true
}

// Apply reconciles incoming into the snapshot for id. A miss is a no-op and
// reports false; changed reports whether the row set grew.
func (c *ReadCache) Apply(id QueryIdentity, incoming catalog.Book) (hit, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.entries[id]
	if !ok {
		return false, false
	}

	next := Reconcile(current, incoming)
	c.entries[id] = next
	return true, len(next.Rows) != len(current.Rows)
}

// Reset drops every snapshot, as on logout.
func (c *ReadCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[QueryIdentity]CachedQueryResult)
	c.mu.Unlock()
}

func (c *ReadCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneRows(rows []catalog.Book) []catalog.Book {
	if rows == nil {
		return []catalog.Book{}
	}
	out := make([]catalog.Book, len(rows))
	for i := range rows {
		out[i] = cloneBook(rows[i])
	}
	return out
}

// cloneBook copies the genres slice and the author's pointer fields so no
// caller shares memory with a stored snapshot.
func cloneBook(b catalog.Book) catalog.Book {
	if b.Genres != nil {
		b.Genres = append([]string(nil), b.Genres...)
	}
	b.Author.Born = cloneInt(b.Author.Born)
	b.Author.BookCount = cloneInt(b.Author.BookCount)
	return b
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
