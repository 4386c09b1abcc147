package memstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/author"
	"library-backend/internal/domains/book"
	"library-backend/internal/domains/user"
)

func strPtr(s string) *string { return &s }

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SeedDemo(ctx))

	authors, err := s.Authors().Count(ctx)
	require.NoError(t, err)
	books, err := s.Books().Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, authors)
	assert.Equal(t, 7, books)

	all, err := s.Books().Find(ctx, book.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "Clean Code", all[0].Title)
	assert.Equal(t, "Robert Martin", all[0].Author.Name)
}

func TestBooks_FilterByGenreAndAuthor(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SeedDemo(ctx))

	refactoring, err := s.Books().Find(ctx, book.Filter{Genre: strPtr("refactoring")})
	require.NoError(t, err)
	assert.Len(t, refactoring, 4)

	dostoevsky, err := s.Authors().FindByName(ctx, "Fyodor Dostoevsky")
	require.NoError(t, err)

	classics, err := s.Books().Find(ctx, book.Filter{AuthorID: &dostoevsky.ID, Genre: strPtr("crime")})
	require.NoError(t, err)
	require.Len(t, classics, 1)
	assert.Equal(t, "Crime and punishment", classics[0].Title)
}

func TestAuthors_FindByNameOldestWinsAndCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := New().Authors()

	first, err := repo.Insert(ctx, "Sandi Metz", nil)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "Sandi Metz", nil)
	require.NoError(t, err)

	got, err := repo.FindByName(ctx, "Sandi Metz")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = repo.FindByName(ctx, "sandi metz")
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)
}

func TestAuthors_UpdateBornIsVisibleThroughBooks(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.Authors().Insert(ctx, "Joshua Kerievsky", nil)
	require.NoError(t, err)
	_, err = s.Books().Insert(ctx, book.NewBook{Title: "Refactoring to patterns", Published: 2008, AuthorID: a.ID, Genres: []string{"patterns"}})
	require.NoError(t, err)

	updated, err := s.Authors().UpdateBorn(ctx, "Joshua Kerievsky", 1962)
	require.NoError(t, err)
	require.NotNil(t, updated.Born)
	assert.Equal(t, 1962, *updated.Born)

	books, err := s.Books().Find(ctx, book.Filter{})
	require.NoError(t, err)
	require.NotNil(t, books[0].Author.Born)
	assert.Equal(t, 1962, *books[0].Author.Born)

	_, err = s.Authors().UpdateBorn(ctx, "Nobody", 1900)
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)
}

func TestBooks_InsertRejectsUnknownAuthor(t *testing.T) {
	_, err := New().Books().Insert(context.Background(), book.NewBook{Title: "x", AuthorID: uuid.New()})
	assert.ErrorIs(t, err, book.ErrAuthorMissing)
}

func TestBooks_ReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, err := s.Authors().Insert(ctx, "A", nil)
	require.NoError(t, err)

	genres := []string{"classic"}
	_, err = s.Books().Insert(ctx, book.NewBook{Title: "T", AuthorID: a.ID, Genres: genres})
	require.NoError(t, err)
	genres[0] = "mutated"

	books, err := s.Books().Find(ctx, book.Filter{})
	require.NoError(t, err)
	books[0].Genres[0] = "also mutated"

	again, err := s.Books().Find(ctx, book.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"classic"}, again[0].Genres)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := New().Users()

	u, err := repo.Create(ctx, "mluukkai", "refactoring")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "mluukkai", "crime")
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	byName, err := repo.FindByUsername(ctx, "mluukkai")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "refactoring", byID.FavoriteGenre)

	_, err = repo.FindByUsername(ctx, "root")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
