package genre

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-backend/internal/client/catalog"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) AllBooks(ctx context.Context, genre *string) ([]catalog.Book, error) {
	args := m.Called(ctx, genre)
	return args.Get(0).([]catalog.Book), args.Error(1)
}

func TestDistinctGenres(t *testing.T) {
	rows := []catalog.Book{
		{Title: "Clean Code", Genres: []string{"refactoring"}},
		{Title: "Refactoring to patterns", Genres: []string{"refactoring", "patterns"}},
		{Title: "Crime and punishment", Genres: []string{"classic", "crime"}},
		{Title: "The Demon ", Genres: []string{"classic", "revolution"}},
	}

	assert.Equal(t, []string{"classic", "crime", "patterns", "refactoring", "revolution"}, DistinctGenres(rows))
	assert.Empty(t, DistinctGenres(nil))
}

func TestFilterByGenre_NilMeansNoFilter(t *testing.T) {
	all := []catalog.Book{{Title: "A"}, {Title: "B"}}

	q := new(mockQuerier)
	q.On("AllBooks", mock.Anything, (*string)(nil)).Return(all, nil).Once()

	got, err := FilterByGenre(context.Background(), q, nil)
	require.NoError(t, err)
	assert.Equal(t, all, got)
	q.AssertExpectations(t)
}

func TestFilterByGenre_DelegatesToServer(t *testing.T) {
	classic := "classic"
	q := new(mockQuerier)
	q.On("AllBooks", mock.Anything, mock.MatchedBy(func(g *string) bool {
		return g != nil && *g == classic
	})).Return([]catalog.Book{{Title: "Crime and punishment"}}, nil).Once()

	got, err := FilterByGenre(context.Background(), q, &classic)
	require.NoError(t, err)
	require.Len(t, got, 1)
	q.AssertExpectations(t)
}
