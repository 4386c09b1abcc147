package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"library-backend/internal/client/catalog"
)

// Server event names besides book-added.
const (
	EventConnected = "connected"
	EventHeartbeat = "heartbeat"
	EventEvicted   = "evicted"
)

// ErrEvicted means the server dropped this subscriber for falling behind.
// Cached results may be missing events and must be refetched.
var ErrEvicted = errors.New("subscription evicted by server")

// Subscriber opens streams against one subscription URL.
type Subscriber struct {
	url        string
	httpClient *http.Client
}

// NewSubscriber uses a client without timeout when httpClient is nil; the
// stream lifetime is bounded by the context passed to Open.
func NewSubscriber(url string, httpClient *http.Client) *Subscriber {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Subscriber{url: url, httpClient: httpClient}
}

// Stream is one open subscription.
type Stream struct {
	events chan catalog.ChangeEvent
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// Open connects and starts decoding in the background. It returns once the
// server accepted the subscription.
func (s *Subscriber) Open(ctx context.Context) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open subscription: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("open subscription: unexpected status %d", resp.StatusCode)
	}

	st := &Stream{
		events: make(chan catalog.ChangeEvent, 16),
		cancel: cancel,
	}

	go func() {
		defer close(st.events)
		defer func() { _ = resp.Body.Close() }()

		err := Decode(ctx, resp.Body, func(ev Event) error {
			return st.dispatch(ctx, ev)
		})
		// a cancelled context surfaces as a body read error
		if err != nil && !errors.Is(err, ErrEvicted) && ctx.Err() != nil {
			err = nil
		}
		st.setErr(err)
	}()

	return st, nil
}

func (st *Stream) dispatch(ctx context.Context, ev Event) error {
	switch ev.Name {
	case catalog.EventBookAdded:
		var change catalog.ChangeEvent
		if err := json.Unmarshal([]byte(ev.Data), &change); err != nil {
			log.Warn().Err(err).Msg("subscription: dropping undecodable event")
			return nil
		}
		select {
		case st.events <- change:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	case EventEvicted:
		return ErrEvicted
	case EventConnected, EventHeartbeat:
		return nil
	default:
		log.Debug().Str("event", ev.Name).Msg("subscription: ignoring event")
		return nil
	}
}

// Events is closed when the stream ends. Check Err afterwards.
func (st *Stream) Events() <-chan catalog.ChangeEvent {
	return st.events
}

// Err is nil for a clean close, ErrEvicted after eviction, or the transport
// error that ended the stream. Valid once Events is closed.
func (st *Stream) Err() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

func (st *Stream) setErr(err error) {
	st.mu.Lock()
	st.err = err
	st.mu.Unlock()
}

// Close ends the stream.
func (st *Stream) Close() {
	st.cancel()
}
