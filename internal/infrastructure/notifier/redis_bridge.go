package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	bridgeRetryMin = 500 * time.Millisecond
	bridgeRetryMax = 30 * time.Second
)

var errSubscriptionClosed = errors.New("redis subscription closed")

// subscribeFunc opens the channel subscription. closeSub ends it.
type subscribeFunc func(ctx context.Context) (messages <-chan *redis.Message, closeSub func() error, err error)

// RedisBridge publishes ChangeEvents on a redis channel so every API
// replica's Hub sees every addBook, not only the replica that served it.
//
// While the relay is not subscribed, Publish also delivers to the local hub,
// so this replica's subscribers keep receiving events. Around a reconnect an
// event can reach the hub twice; delivery is at-least-once.
type RedisBridge struct {
	client    redis.UniversalClient
	channel   string
	hub       *Hub
	subscribe subscribeFunc

	subscribed atomic.Bool
	retryMin   time.Duration
	retryMax   time.Duration
}

var _ Publisher = (*RedisBridge)(nil)

func NewRedisBridge(client redis.UniversalClient, channel string, hub *Hub) *RedisBridge {
	b := &RedisBridge{
		client:   client,
		channel:  channel,
		hub:      hub,
		retryMin: bridgeRetryMin,
		retryMax: bridgeRetryMax,
	}
	b.subscribe = b.redisSubscribe
	return b
}

// Subscribed reports whether the relay currently feeds the hub from redis.
func (b *RedisBridge) Subscribed() bool {
	return b.subscribed.Load()
}

// Publish sends the event through redis. When redis is unreachable the
// event still reaches this replica's subscribers and the error is returned.
func (b *RedisBridge) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := msgpack.Marshal(&event)
	if err != nil {
		bridgeErrors.WithLabelValues("encode").Inc()
		return fmt.Errorf("encode change event: %w", err)
	}

	relayed := b.subscribed.Load()

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		bridgeErrors.WithLabelValues("publish").Inc()
		if hubErr := b.hub.Publish(ctx, event); hubErr != nil {
			log.Error().Err(hubErr).Msg("local fallback publish failed")
		}
		return fmt.Errorf("redis publish: %w", err)
	}
	eventsPublished.WithLabelValues(event.Kind, "redis").Inc()

	if !relayed {
		if err := b.hub.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Run relays the redis channel into the hub until ctx is done. A failed or
// dropped subscription is retried with exponential backoff; meanwhile
// Publish delivers locally. Run returns early only when the hub is closed.
func (b *RedisBridge) Run(ctx context.Context) error {
	backoff := b.retryMin
	for {
		wasSubscribed, err := b.relay(ctx)
		b.subscribed.Store(false)

		if ctx.Err() != nil {
			log.Info().Msg("notifier bridge stopping")
			return nil
		}
		if errors.Is(err, ErrHubClosed) {
			return err
		}
		if wasSubscribed {
			backoff = b.retryMin
		}

		log.Warn().Err(err).
			Dur("retry_in", backoff).
			Msg("notifier bridge not subscribed, publishing locally")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, b.retryMax)
	}
}

// relay runs one subscription. wasSubscribed reports whether it got past
// the subscribe confirmation.
func (b *RedisBridge) relay(ctx context.Context) (wasSubscribed bool, err error) {
	messages, closeSub, err := b.subscribe(ctx)
	if err != nil {
		bridgeErrors.WithLabelValues("subscribe").Inc()
		return false, err
	}
	defer func() { _ = closeSub() }()

	b.subscribed.Store(true)
	log.Info().Str("channel", b.channel).Msg("notifier bridge subscribed")

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return true, errSubscriptionClosed
			}
			event, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				bridgeErrors.WithLabelValues("decode").Inc()
				log.Error().Err(err).Msg("dropping undecodable change event")
				continue
			}
			if err := b.hub.Publish(ctx, event); err != nil {
				return true, err
			}
		}
	}
}

func (b *RedisBridge) redisSubscribe(ctx context.Context) (<-chan *redis.Message, func() error, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	return pubsub.Channel(), pubsub.Close, nil
}

func DecodeEvent(payload []byte) (ChangeEvent, error) {
	var event ChangeEvent
	if err := msgpack.Unmarshal(payload, &event); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	return event, nil
}
