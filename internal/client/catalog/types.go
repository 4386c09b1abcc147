// Package catalog holds the client's typed view of the catalog API.
package catalog

// EventBookAdded is the SSE event name for a new book.
const EventBookAdded = "book-added"

type Author struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Born      *int   `json:"born,omitempty"`
	BookCount *int   `json:"bookCount,omitempty"`
}

// Book is one row of a cached allBooks result.
type Book struct {
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title"`
	Published int      `json:"published"`
	Author    Author   `json:"author"`
	Genres    []string `json:"genres"`
}

type User struct {
	ID            string `json:"id,omitempty"`
	Username      string `json:"username"`
	FavoriteGenre string `json:"favoriteGenre"`
}

// ChangeEvent is the payload pushed on the book subscription.
type ChangeEvent struct {
	Kind string `json:"kind"`
	Book Book   `json:"book"`
}

// NewBook is the addBook input.
type NewBook struct {
	Title     string
	Published int
	Author    string
	Genres    []string
}
