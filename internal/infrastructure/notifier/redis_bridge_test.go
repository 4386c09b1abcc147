package notifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis records PUBLISH payloads. Every other command panics through
// the nil embedded client.
type fakeRedis struct {
	redis.UniversalClient

	mu         sync.Mutex
	published  [][]byte
	publishErr error
}

func (f *fakeRedis) Publish(_ context.Context, _ string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.publishErr != nil {
		return redis.NewIntResult(0, f.publishErr)
	}
	f.published = append(f.published, message.([]byte))
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) payloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.published...)
}

// fakeChannel stands in for a redis subscription.
type fakeChannel struct {
	attempts atomic.Int32
	failures int32
	messages chan *redis.Message
}

func (f *fakeChannel) subscribe(context.Context) (<-chan *redis.Message, func() error, error) {
	if f.attempts.Add(1) <= f.failures {
		return nil, nil, errors.New("connection refused")
	}
	return f.messages, func() error { return nil }, nil
}

func newTestBridge(t *testing.T, client *fakeRedis, ch *fakeChannel) (*RedisBridge, *Hub) {
	t.Helper()
	hub := NewHub(8)
	t.Cleanup(hub.Close)

	b := NewRedisBridge(client, "library:books", hub)
	b.retryMin = 5 * time.Millisecond
	b.retryMax = 20 * time.Millisecond
	if ch != nil {
		b.subscribe = ch.subscribe
	}
	return b, hub
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %q", ev.Book.Title)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisBridge_PublishEncodesAndDeliversLocallyWhenNotSubscribed(t *testing.T) {
	client := &fakeRedis{}
	b, hub := newTestBridge(t, client, nil)

	sub, err := hub.Subscribe(context.Background())
	require.NoError(t, err)

	ev := BookAdded(sampleBook("Clean Code"))
	require.NoError(t, b.Publish(context.Background(), ev))

	got := receive(t, sub)
	assert.Equal(t, "Clean Code", got.Book.Title)

	payloads := client.payloads()
	require.Len(t, payloads, 1)
	decoded, err := DecodeEvent(payloads[0])
	require.NoError(t, err)
	assert.Equal(t, ev.Kind, decoded.Kind)
	assert.Equal(t, ev.Book.ID, decoded.Book.ID)
	assert.Equal(t, ev.Book.Genres, decoded.Book.Genres)
}

func TestRedisBridge_PublishFailureFallsBackToHub(t *testing.T) {
	client := &fakeRedis{publishErr: errors.New("redis down")}
	b, hub := newTestBridge(t, client, nil)

	sub, err := hub.Subscribe(context.Background())
	require.NoError(t, err)

	err = b.Publish(context.Background(), BookAdded(sampleBook("Refactoring")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")

	assert.Equal(t, "Refactoring", receive(t, sub).Book.Title)
	assertNoEvent(t, sub)
}

func TestRedisBridge_RunRelaysIntoHub(t *testing.T) {
	client := &fakeRedis{}
	ch := &fakeChannel{messages: make(chan *redis.Message, 4)}
	b, hub := newTestBridge(t, client, ch)

	sub, err := hub.Subscribe(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	require.Eventually(t, b.Subscribed, time.Second, 5*time.Millisecond)

	// subscribed: the event only reaches the hub through the channel
	require.NoError(t, b.Publish(ctx, BookAdded(sampleBook("Agile software development"))))
	assertNoEvent(t, sub)

	ch.messages <- &redis.Message{Payload: "not msgpack"}
	for _, p := range client.payloads() {
		ch.messages <- &redis.Message{Payload: string(p)}
	}
	assert.Equal(t, "Agile software development", receive(t, sub).Book.Title)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	assert.False(t, b.Subscribed())
}

func TestRedisBridge_RunRetriesFailedSubscribe(t *testing.T) {
	client := &fakeRedis{}
	ch := &fakeChannel{failures: 2, messages: make(chan *redis.Message)}
	b, hub := newTestBridge(t, client, ch)

	sub, err := hub.Subscribe(context.Background())
	require.NoError(t, err)

	// before the relay is up, publishes still reach local subscribers
	require.NoError(t, b.Publish(context.Background(), BookAdded(sampleBook("Demons"))))
	assert.Equal(t, "Demons", receive(t, sub).Book.Title)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.Run(ctx) }()

	require.Eventually(t, b.Subscribed, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), ch.attempts.Load())
}

func TestRedisBridge_RunResubscribesWhenChannelCloses(t *testing.T) {
	client := &fakeRedis{}
	first := make(chan *redis.Message)
	second := make(chan *redis.Message, 1)

	var calls atomic.Int32
	b, hub := newTestBridge(t, client, nil)
	b.subscribe = func(context.Context) (<-chan *redis.Message, func() error, error) {
		if calls.Add(1) == 1 {
			return first, func() error { return nil }, nil
		}
		return second, func() error { return nil }, nil
	}

	sub, err := hub.Subscribe(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.Run(ctx) }()

	require.Eventually(t, b.Subscribed, time.Second, 5*time.Millisecond)
	close(first)
	require.Eventually(t, func() bool { return calls.Load() == 2 && b.Subscribed() }, time.Second, 5*time.Millisecond)

	ev := BookAdded(sampleBook("The Idiot"))
	require.NoError(t, b.Publish(ctx, ev))
	payloads := client.payloads()
	second <- &redis.Message{Payload: string(payloads[len(payloads)-1])}

	assert.Equal(t, "The Idiot", receive(t, sub).Book.Title)
}
