package client

import (
	"sync"

	"library-backend/internal/client/catalog"
)

// authorCache holds the last allAuthors result. Authors are never extended
// by events, only replaced by refetch.
type authorCache struct {
	mu      sync.RWMutex
	authors []catalog.Author
	ok      bool
}

func (c *authorCache) get() ([]catalog.Author, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ok {
		return nil, false
	}
	out := make([]catalog.Author, len(c.authors))
	copy(out, c.authors)
	return out, true
}

func (c *authorCache) set(authors []catalog.Author) {
	c.mu.Lock()
	c.authors = append([]catalog.Author(nil), authors...)
	c.ok = true
	c.mu.Unlock()
}

func (c *authorCache) reset() {
	c.mu.Lock()
	c.authors, c.ok = nil, false
	c.mu.Unlock()
}
