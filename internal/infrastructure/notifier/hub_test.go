package notifier

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"library-backend/internal/domains/author"
	"library-backend/internal/domains/book"
)

func sampleBook(title string) book.Book {
	born := 1952
	return book.Book{
		ID:        uuid.New(),
		Title:     title,
		Published: 2008,
		Author:    author.Author{ID: uuid.New(), Name: "Robert Martin", Born: &born},
		Genres:    []string{"refactoring"},
	}
}

func receive(t *testing.T, sub *Subscription) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ChangeEvent{}
	}
}

func waitClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription not closed")
		}
	}
}

func TestHub_FanOutInOrder(t *testing.T) {
	hub := NewHub(8)
	ctx := context.Background()

	a, err := hub.Subscribe(ctx)
	require.NoError(t, err)
	b, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, BookAdded(sampleBook("Clean Code"))))
	require.NoError(t, hub.Publish(ctx, BookAdded(sampleBook("Refactoring"))))

	for _, sub := range []*Subscription{a, b} {
		assert.Equal(t, "Clean Code", receive(t, sub).Book.Title)
		ev := receive(t, sub)
		assert.Equal(t, KindBookAdded, ev.Kind)
		assert.Equal(t, "Refactoring", ev.Book.Title)
	}
}

func TestHub_EvictsFullSubscriber(t *testing.T) {
	hub := NewHub(1)
	ctx := context.Background()

	slow, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, BookAdded(sampleBook("one"))))
	require.NoError(t, hub.Publish(ctx, BookAdded(sampleBook("two"))))

	assert.Equal(t, 0, hub.SubscriberCount())

	// the buffered event is still readable, then the channel is closed
	assert.Equal(t, "one", receive(t, slow).Book.Title)
	waitClosed(t, slow)
	assert.True(t, slow.Evicted())
}

func TestHub_ContextCancelUnsubscribes(t *testing.T) {
	hub := NewHub(4)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := hub.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.SubscriberCount())

	cancel()
	waitClosed(t, sub)
	assert.False(t, sub.Evicted())
	assert.Eventually(t, func() bool { return hub.SubscriberCount() == 0 }, time.Second, 10*time.Millisecond)

	// a second unsubscribe is a no-op
	hub.Unsubscribe(sub.ID)
}

func TestHub_UnsubscribeReleasesWatcher(t *testing.T) {
	hub := NewHub(4)
	baseline := runtime.NumGoroutine()

	subs := make([]*Subscription, 0, 50)
	for i := 0; i < 50; i++ {
		sub, err := hub.Subscribe(context.Background())
		require.NoError(t, err)
		subs = append(subs, sub)
	}
	for _, sub := range subs {
		hub.Unsubscribe(sub.ID)
		select {
		case <-sub.done:
		default:
			t.Fatal("done not closed on unsubscribe")
		}
	}

	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= baseline },
		time.Second, 10*time.Millisecond, "context watchers still running")
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(4)
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	hub.Close()
	waitClosed(t, sub)

	_, err = hub.Subscribe(ctx)
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.ErrorIs(t, hub.Publish(ctx, BookAdded(sampleBook("late"))), ErrHubClosed)

	hub.Close()
}

func TestDecodeEvent_RoundTrip(t *testing.T) {
	ev := BookAdded(sampleBook("Crime and punishment"))

	payload, err := msgpack.Marshal(&ev)
	require.NoError(t, err)

	got, err := DecodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	_, err = DecodeEvent([]byte{0xc1})
	assert.Error(t, err)
}

func TestSSEHandler_StreamsBookAdded(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewHub(4)
	router := gin.New()
	router.GET("/subscriptions/books", NewSSEHandler(hub, time.Hour).Stream)

	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/subscriptions/books", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(ctx, BookAdded(sampleBook("The Demon"))))

	reader := bufio.NewReader(resp.Body)
	var sawEvent bool
	for i := 0; i < 20; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "event:") && strings.TrimSpace(strings.TrimPrefix(line, "event:")) == KindBookAdded {
			sawEvent = true
			continue
		}
		if sawEvent && strings.HasPrefix(line, "data:") {
			assert.Contains(t, line, `"title":"The Demon"`)
			return
		}
	}
	t.Fatal("book-added event not received")
}
