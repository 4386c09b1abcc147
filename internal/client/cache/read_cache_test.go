package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/client/catalog"
)

var allBooks = Identity(catalog.OpAllBooks, nil)

func TestReadCache_MissIsNoop(t *testing.T) {
	c := NewReadCache()

	hit, changed := c.Apply(allBooks, book("A", 2000))

	assert.False(t, hit)
	assert.False(t, changed)
	_, ok := c.Get(allBooks)
	assert.False(t, ok, "a miss never fabricates a result")
	assert.Equal(t, 0, c.Len())
}

func TestReadCache_StoreReplacesWholesale(t *testing.T) {
	c := NewReadCache()
	c.Store(allBooks, []catalog.Book{book("A", 2000), book("B", 2001)})
	c.Store(allBooks, []catalog.Book{book("C", 2002), book("C", 2003)})

	got, ok := c.Get(allBooks)
	require.True(t, ok)
	assert.Equal(t, []string{"C"}, got.Titles())
	assert.Equal(t, 2002, got.Rows[0].Published)
}

func TestReadCache_GetReturnsCopy(t *testing.T) {
	c := NewReadCache()
	born := 1952
	stored := book("A", 2000)
	stored.Author.Born = &born
	c.Store(allBooks, []catalog.Book{stored})

	got, _ := c.Get(allBooks)
	got.Rows[0].Title = "mutated"
	got.Rows[0].Genres[0] = "mutated"
	*got.Rows[0].Author.Born = 1

	again, _ := c.Get(allBooks)
	assert.Equal(t, "A", again.Rows[0].Title)
	assert.Equal(t, []string{"classic"}, again.Rows[0].Genres)
	require.NotNil(t, again.Rows[0].Author.Born)
	assert.Equal(t, 1952, *again.Rows[0].Author.Born)
}

func TestReadCache_StoreAndApplyDoNotKeepCallerSlices(t *testing.T) {
	c := NewReadCache()
	rows := []catalog.Book{book("A", 2000)}
	returned := c.Store(allBooks, rows)

	rows[0].Genres[0] = "caller"
	returned.Rows[0].Genres[0] = "returned"

	incoming := book("B", 2001)
	c.Apply(allBooks, incoming)
	incoming.Genres[0] = "event"

	got, _ := c.Get(allBooks)
	require.Equal(t, []string{"A", "B"}, got.Titles())
	assert.Equal(t, []string{"classic"}, got.Rows[0].Genres)
	assert.Equal(t, []string{"classic"}, got.Rows[1].Genres)
}

func TestReadCache_ApplyAndReset(t *testing.T) {
	c := NewReadCache()
	c.Store(allBooks, []catalog.Book{book("A", 2000)})

	hit, changed := c.Apply(allBooks, book("B", 2001))
	assert.True(t, hit)
	assert.True(t, changed)

	hit, changed = c.Apply(allBooks, book("B", 2001))
	assert.True(t, hit)
	assert.False(t, changed)

	got, _ := c.Get(allBooks)
	assert.Equal(t, []string{"A", "B"}, got.Titles())

	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func TestReconciler_AppliesInArrivalOrder(t *testing.T) {
	c := NewReadCache()
	c.Store(allBooks, nil)
	byGenre := Identity(catalog.OpBooksByGenre, map[string]interface{}{"genre": "classic"})

	var outcomes []Applied
	r := NewReconciler(c, allBooks, byGenre).OnApply(func(a Applied) {
		outcomes = append(outcomes, a)
	})

	events := make(chan catalog.ChangeEvent, 4)
	events <- catalog.ChangeEvent{Kind: catalog.EventBookAdded, Book: book("B", 1)}
	events <- catalog.ChangeEvent{Kind: catalog.EventBookAdded, Book: book("A", 2)}
	events <- catalog.ChangeEvent{Kind: "author-edited", Book: book("X", 3)}
	events <- catalog.ChangeEvent{Kind: catalog.EventBookAdded, Book: book("B", 4)}
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, events))

	got, _ := c.Get(allBooks)
	assert.Equal(t, []string{"B", "A"}, got.Titles())
	assert.Equal(t, 1, got.Rows[0].Published)

	require.Len(t, outcomes, 6, "two targets per book-added event, unknown kinds skipped")
	assert.False(t, outcomes[1].Hit, "byGenre was never fetched")
	assert.False(t, outcomes[4].Changed, "second B is a duplicate")
}

func TestReconciler_StopsOnContext(t *testing.T) {
	r := NewReconciler(NewReadCache(), allBooks)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, make(chan catalog.ChangeEvent))
	assert.ErrorIs(t, err, context.Canceled)
}
