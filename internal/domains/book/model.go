package book

import (
	"github.com/google/uuid"

	"library-backend/internal/domains/author"
)

// Book is immutable once inserted. Author is the resolved (populated)
// author record, a non-owning reference.
type Book struct {
	ID        uuid.UUID     `json:"id" msgpack:"id"`
	Title     string        `json:"title" msgpack:"title"`
	Published int           `json:"published" msgpack:"published"`
	Author    author.Author `json:"author" msgpack:"author"`
	Genres    []string      `json:"genres" msgpack:"genres"`
}

// NewBook is the insert payload.
type NewBook struct {
	Title     string
	Published int
	AuthorID  uuid.UUID
	Genres    []string
}

// Filter narrows Find. Nil fields mean "no filter".
type Filter struct {
	AuthorID *uuid.UUID
	Genre    *string
}

// HasGenre reports whether genre is one of the book's genres
func (b *Book) HasGenre(genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Matches applies the filter in memory, with the same semantics as the
// postgres query.
func (f Filter) Matches(b *Book) bool {
	if f.AuthorID != nil && b.Author.ID != *f.AuthorID {
		return false
	}
	if f.Genre != nil && !b.HasGenre(*f.Genre) {
		return false
	}
	return true
}

// Authors returns the resolved author of each book, in book order.
func Authors(books []Book) []author.Author {
	out := make([]author.Author, len(books))
	for i := range books {
		out[i] = books[i].Author
	}
	return out
}
