package notifier

import (
	"context"

	"library-backend/internal/domains/book"
)

// KindBookAdded is the only event kind. editAuthor emits nothing.
const KindBookAdded = "book-added"

// ChangeEvent is broadcast after a successful addBook. The book carries its
// resolved author.
type ChangeEvent struct {
	Kind string    `json:"kind" msgpack:"kind"`
	Book book.Book `json:"book" msgpack:"book"`
}

func BookAdded(b book.Book) ChangeEvent {
	return ChangeEvent{Kind: KindBookAdded, Book: b}
}

// Publisher is the write side of the change notifier.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}
