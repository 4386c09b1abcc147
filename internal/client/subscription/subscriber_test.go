package subscription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/client/catalog"
	"library-backend/internal/domains/author"
	"library-backend/internal/domains/book"
	"library-backend/internal/infrastructure/notifier"
)

func newStreamServer(t *testing.T, buffer int) (*notifier.Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := notifier.NewHub(buffer)
	router := gin.New()
	router.GET("/subscriptions/books", notifier.NewSSEHandler(hub, time.Hour).Stream)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func waitForSubscribers(t *testing.T, hub *notifier.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.SubscriberCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func added(title string) notifier.ChangeEvent {
	return notifier.BookAdded(book.Book{
		ID:        uuid.New(),
		Title:     title,
		Published: 2012,
		Author:    author.Author{ID: uuid.New(), Name: "Pramod Sadalage"},
		Genres:    []string{"database"},
	})
}

func TestSubscriber_ReceivesBookAdded(t *testing.T) {
	hub, srv := newStreamServer(t, 8)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := NewSubscriber(srv.URL+"/subscriptions/books", nil).Open(ctx)
	require.NoError(t, err)
	defer st.Close()
	waitForSubscribers(t, hub, 1)

	require.NoError(t, hub.Publish(ctx, added("NoSQL Distilled")))

	select {
	case ev := <-st.Events():
		assert.Equal(t, "book-added", ev.Kind)
		assert.Equal(t, "NoSQL Distilled", ev.Book.Title)
		assert.Equal(t, "Pramod Sadalage", ev.Book.Author.Name)
		assert.Equal(t, []string{"database"}, ev.Book.Genres)
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestSubscriber_CloseEndsCleanly(t *testing.T) {
	hub, srv := newStreamServer(t, 8)

	st, err := NewSubscriber(srv.URL+"/subscriptions/books", nil).Open(context.Background())
	require.NoError(t, err)
	waitForSubscribers(t, hub, 1)

	st.Close()
	for range st.Events() {
	}
	assert.NoError(t, st.Err())
	waitForSubscribers(t, hub, 0)
}

func TestSubscriber_ServerShutdownEndsStream(t *testing.T) {
	hub, srv := newStreamServer(t, 8)

	st, err := NewSubscriber(srv.URL+"/subscriptions/books", nil).Open(context.Background())
	require.NoError(t, err)
	defer st.Close()
	waitForSubscribers(t, hub, 1)

	hub.Close()

	select {
	case _, ok := <-st.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end")
	}
	assert.NoError(t, st.Err())
}

func TestSubscriber_RejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewSubscriber(srv.URL, nil).Open(context.Background())
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestStream_EvictedEventSetsErr(t *testing.T) {
	st := &Stream{events: make(chan catalog.ChangeEvent, 1)}
	err := st.dispatch(context.Background(), Event{Name: EventEvicted, Data: "{}"})
	assert.ErrorIs(t, err, ErrEvicted)
}
