package cache

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/client/catalog"
)

func book(title string, published int) catalog.Book {
	return catalog.Book{
		Title:     title,
		Published: published,
		Author:    catalog.Author{Name: "Someone"},
		Genres:    []string{"classic"},
	}
}

func TestReconcile_AppendsNewTitle(t *testing.T) {
	result := CachedQueryResult{
		Identity: Identity(catalog.OpAllBooks, nil),
		Rows:     []catalog.Book{book("A", 2000), book("B", 2001)},
	}

	next := Reconcile(result, book("C", 2002))

	assert.Equal(t, []string{"A", "B", "C"}, next.Titles())
	assert.Equal(t, result.Identity, next.Identity)
}

func TestReconcile_FirstSeenWins(t *testing.T) {
	result := CachedQueryResult{Rows: []catalog.Book{book("A", 2000)}}

	next := Reconcile(result, book("A", 1999))

	require.Len(t, next.Rows, 1)
	assert.Equal(t, 2000, next.Rows[0].Published, "the existing row is kept")
}

func TestReconcile_Idempotent(t *testing.T) {
	result := CachedQueryResult{Rows: []catalog.Book{book("A", 2000)}}
	incoming := book("B", 2001)

	once := Reconcile(result, incoming)
	twice := Reconcile(once, incoming)

	assert.Equal(t, once, twice)
}

func TestReconcile_DoesNotModifyInput(t *testing.T) {
	rows := make([]catalog.Book, 2, 4)
	rows[0], rows[1] = book("A", 2000), book("B", 2001)
	result := CachedQueryResult{Rows: rows}

	_ = Reconcile(result, book("C", 2002))

	assert.Equal(t, []string{"A", "B"}, result.Titles())
	assert.Equal(t, "", rows[:3][2].Title, "spare capacity untouched")
}

func TestReconcile_TitlesStayUniqueAcrossEventSequence(t *testing.T) {
	titles := []string{"A", "B", "C", "D", "E"}
	rng := rand.New(rand.NewSource(42))

	result := CachedQueryResult{}
	for i := 0; i < 200; i++ {
		result = Reconcile(result, book(titles[rng.Intn(len(titles))], 1900+i))

		seen := map[string]bool{}
		for _, title := range result.Titles() {
			require.False(t, seen[title], "duplicate title %q after %d events", title, i+1)
			seen[title] = true
		}
	}
	assert.LessOrEqual(t, len(result.Rows), len(titles))
}

func TestIdentity_CanonicalVariables(t *testing.T) {
	a := Identity(catalog.OpBooksByGenre, map[string]interface{}{"genre": "classic", "author": "x"})
	b := Identity(catalog.OpBooksByGenre, map[string]interface{}{"author": "x", "genre": "classic"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Identity(catalog.OpBooksByGenre, nil))
	assert.Equal(t, "allBooks", Identity(catalog.OpAllBooks, map[string]interface{}{}).String())
}
