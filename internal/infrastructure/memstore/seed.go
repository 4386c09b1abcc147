package memstore

import (
	"context"
	"fmt"

	"library-backend/internal/domains/book"
)

type seedBook struct {
	title     string
	published int
	author    string
	genres    []string
}

func born(y int) *int { return &y }

var demoAuthors = []struct {
	name string
	born *int
}{
	{"Robert Martin", born(1952)},
	{"Martin Fowler", born(1963)},
	{"Fyodor Dostoevsky", born(1821)},
	{"Joshua Kerievsky", nil},
	{"Sandi Metz", nil},
}

var demoBooks = []seedBook{
	{"Clean Code", 2008, "Robert Martin", []string{"refactoring"}},
	{"Agile software development", 2002, "Robert Martin", []string{"agile", "patterns", "design"}},
	{"Refactoring, edition 2", 2018, "Martin Fowler", []string{"refactoring"}},
	{"Refactoring to patterns", 2008, "Joshua Kerievsky", []string{"refactoring", "patterns"}},
	{"Practical Object-Oriented Design, An Agile Primer Using Ruby", 2012, "Sandi Metz", []string{"refactoring", "design"}},
	{"Crime and punishment", 1866, "Fyodor Dostoevsky", []string{"classic", "crime"}},
	{"The Demon ", 1872, "Fyodor Dostoevsky", []string{"classic", "revolution"}},
}

// SeedDemo loads the demo catalog: five authors and seven books.
func (s *Store) SeedDemo(ctx context.Context) error {
	authors := s.Authors()
	books := s.Books()

	for _, a := range demoAuthors {
		if _, err := authors.Insert(ctx, a.name, a.born); err != nil {
			return fmt.Errorf("seed author %s: %w", a.name, err)
		}
	}

	for _, sb := range demoBooks {
		a, err := authors.FindByName(ctx, sb.author)
		if err != nil {
			return fmt.Errorf("seed book %s: %w", sb.title, err)
		}
		_, err = books.Insert(ctx, book.NewBook{
			Title:     sb.title,
			Published: sb.published,
			AuthorID:  a.ID,
			Genres:    sb.genres,
		})
		if err != nil {
			return fmt.Errorf("seed book %s: %w", sb.title, err)
		}
	}
	return nil
}
