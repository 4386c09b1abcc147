package book

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"library-backend/internal/domains/author"
)

func strPtr(s string) *string { return &s }

func TestFilter_Matches(t *testing.T) {
	fowler := author.Author{ID: uuid.New(), Name: "Martin Fowler"}
	b := &Book{Title: "Refactoring, edition 2", Author: fowler, Genres: []string{"refactoring"}}

	other := uuid.New()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"no filter", Filter{}, true},
		{"author match", Filter{AuthorID: &fowler.ID}, true},
		{"author mismatch", Filter{AuthorID: &other}, false},
		{"genre match", Filter{Genre: strPtr("refactoring")}, true},
		{"genre mismatch", Filter{Genre: strPtr("crime")}, false},
		{"genre is case sensitive", Filter{Genre: strPtr("Refactoring")}, false},
		{"both", Filter{AuthorID: &fowler.ID, Genre: strPtr("refactoring")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(b))
		})
	}
}

func TestAuthors(t *testing.T) {
	a := author.Author{Name: "A"}
	b := author.Author{Name: "B"}

	got := Authors([]Book{{Author: a}, {Author: b}, {Author: a}})
	assert.Equal(t, []author.Author{a, b, a}, got)
}

func TestAddBookRequest_Validate(t *testing.T) {
	valid := AddBookRequest{Title: "Clean Code", Published: 2008, Author: "Robert Martin", Genres: []string{"refactoring"}}
	assert.NoError(t, valid.Validate())

	noGenres := valid
	noGenres.Genres = []string{}
	assert.NoError(t, noGenres.Validate(), "empty genre list is allowed")

	for _, year := range []int{-5000, 0, 12000} {
		r := valid
		r.Published = year
		assert.NoError(t, r.Validate(), "published %d", year)
	}

	for name, mutate := range map[string]func(r *AddBookRequest){
		"empty title":  func(r *AddBookRequest) { r.Title = "" },
		"blank title":  func(r *AddBookRequest) { r.Title = "   " },
		"empty author": func(r *AddBookRequest) { r.Author = "" },
		"nil genres":   func(r *AddBookRequest) { r.Genres = nil },
		"empty genre":  func(r *AddBookRequest) { r.Genres = []string{"ok", ""} },
	} {
		t.Run(name, func(t *testing.T) {
			r := valid
			r.Genres = append([]string(nil), valid.Genres...)
			mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}
