package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrHubClosed = errors.New("notifier hub is closed")

// Subscription is one connected client. Events is closed when the
// subscription ends: unsubscribe, context cancellation, eviction or hub
// shutdown.
type Subscription struct {
	ID          string
	ConnectedAt time.Time

	events chan ChangeEvent
	done   chan struct{}
	once   sync.Once
	// evicted is set before events is closed when the buffer overflowed
	evicted bool
}

func (s *Subscription) Events() <-chan ChangeEvent { return s.events }

// Evicted reports whether the subscription was dropped for falling behind.
// Only meaningful after Events is closed.
func (s *Subscription) Evicted() bool { return s.evicted }

func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.events)
		close(s.done)
	})
}

// Hub fans ChangeEvents out to every subscriber in publish order. Each
// subscriber owns its channel; nothing is shared between consumers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber. Cancelling ctx unsubscribes it.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	sub := &Subscription{
		ID:          uuid.NewString(),
		ConnectedAt: time.Now(),
		events:      make(chan ChangeEvent, h.buffer),
		done:        make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.subs[sub.ID] = sub
	total := len(h.subs)
	h.mu.Unlock()

	subscribersActive.Inc()
	log.Info().
		Str("subscriber_id", sub.ID).
		Int("total_subscribers", total).
		Msg("subscriber connected")

	go func() {
		select {
		case <-ctx.Done():
			h.Unsubscribe(sub.ID)
		case <-sub.done:
		}
	}()

	return sub, nil
}

// Unsubscribe removes the subscriber and closes its channel. Unknown or
// already removed ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	total := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}

	sub.close()
	subscribersActive.Dec()
	log.Info().
		Str("subscriber_id", id).
		Dur("duration", time.Since(sub.ConnectedAt)).
		Int("total_subscribers", total).
		Msg("subscriber disconnected")
}

// Publish delivers event to every current subscriber without blocking.
// A subscriber whose buffer is full is evicted so it can resync rather
// than silently miss the event.
func (h *Hub) Publish(_ context.Context, event ChangeEvent) error {
	var slow []string

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	delivered := 0
	for id, sub := range h.subs {
		select {
		case sub.events <- event:
			delivered++
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	eventsPublished.WithLabelValues(event.Kind, "hub").Inc()
	eventsDelivered.Add(float64(delivered))
	for _, id := range slow {
		h.evict(id)
	}

	log.Debug().
		Str("kind", event.Kind).
		Str("title", event.Book.Title).
		Int("delivered", delivered).
		Int("evicted", len(slow)).
		Msg("event broadcast")

	return nil
}

func (h *Hub) evict(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		sub.evicted = true
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	sub.close()
	subscribersActive.Dec()
	subscribersEvicted.Inc()
	log.Warn().Str("subscriber_id", id).Msg("evicted slow subscriber")
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription. Later Subscribe and Publish calls fail
// with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
		subscribersActive.Dec()
	}
	log.Info().Int("closed", len(subs)).Msg("notifier hub closed")
}
