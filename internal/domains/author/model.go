package author

import (
	"github.com/google/uuid"
)

// Author is the catalog author entity.
// Name is the business key used by addBook and editAuthor lookups; ID is
// assigned by the store.
type Author struct {
	ID   uuid.UUID `json:"id" db:"id" msgpack:"id"`
	Name string    `json:"name" db:"name" msgpack:"name"`
	Born *int      `json:"born,omitempty" db:"born" msgpack:"born"`
}

// View is the allAuthors row. It is derived per query and never stored.
type View struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Born      *int      `json:"born,omitempty"`
	BookCount int       `json:"bookCount"`
}

// HasBirthYear reports whether born is known
func (a *Author) HasBirthYear() bool {
	return a.Born != nil
}

// ToView pairs the author with an already computed book count.
func (a Author) ToView(bookCount int) View {
	return View{
		ID:        a.ID,
		Name:      a.Name,
		Born:      a.Born,
		BookCount: bookCount,
	}
}
