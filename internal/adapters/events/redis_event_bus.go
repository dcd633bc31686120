package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
	redisclient "github.com/seniornav/careplan/backend/internal/infrastructure/clients/redis"
)

// subscriberBuffer bounds the per-subscriber event queue. A subscriber
// that falls this far behind starts dropping events instead of
// blocking the fan-out.
const subscriberBuffer = 64

// RedisEventBus implements EventBus over Redis pub/sub. One Redis
// subscription is held per channel; incoming payloads are decoded once
// and fanned out to every local subscriber of that channel.
type RedisEventBus struct {
	client *redisclient.Client

	mu          sync.RWMutex
	streams     map[string]*redis.PubSub
	subscribers map[string]map[chan *entities.AssessmentEvent]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRedisEventBus creates a Redis-backed event bus.
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:      client,
		streams:     make(map[string]*redis.PubSub),
		subscribers: make(map[string]map[chan *entities.AssessmentEvent]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Publish publishes an assessment event to a channel.
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.AssessmentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Msg("published assessment event")
	return nil
}

// Subscribe registers a subscriber for a channel. The returned channel
// is closed when ctx is cancelled or the bus shuts down.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AssessmentEvent, error) {
	eventChan := make(chan *entities.AssessmentEvent, subscriberBuffer)

	b.mu.Lock()
	if _, ok := b.streams[channel]; !ok {
		stream := b.client.Client().Subscribe(b.ctx, channel)
		b.streams[channel] = stream
		go b.receive(channel, stream)
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.AssessmentEvent]struct{})
	}
	b.subscribers[channel][eventChan] = struct{}{}
	count := len(b.subscribers[channel])
	b.mu.Unlock()

	log.Debug().
		Str("channel", channel).
		Int("subscribers", count).
		Msg("subscribed to assessment events")

	go func() {
		<-ctx.Done()
		b.dropSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

// receive pumps one Redis subscription into the local fan-out until
// the bus shuts down or the stream closes.
func (b *RedisEventBus) receive(channel string, stream *redis.PubSub) {
	defer b.closeChannel(channel)

	msgs := stream.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			b.dispatch(channel, []byte(msg.Payload))
		}
	}
}

// dispatch decodes one payload and fans it out to every subscriber of
// the channel. Full subscribers are skipped, never blocked on.
func (b *RedisEventBus) dispatch(channel string, payload []byte) {
	var event entities.AssessmentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Warn().Err(err).
			Str("channel", channel).
			Msg("dropping undecodable assessment event")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for subscriber := range b.subscribers[channel] {
		select {
		case subscriber <- &event:
		default:
			log.Warn().
				Str("channel", channel).
				Str("event_id", event.ID).
				Msg("subscriber queue full, dropping assessment event")
		}
	}
}

// dropSubscriber removes one subscriber and tears down the Redis
// stream when it was the last one on its channel.
func (b *RedisEventBus) dropSubscriber(channel string, eventChan chan *entities.AssessmentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[channel]
	if !ok {
		return
	}
	if _, ok := subs[eventChan]; !ok {
		return
	}

	delete(subs, eventChan)
	close(eventChan)

	if len(subs) > 0 {
		return
	}
	delete(b.subscribers, channel)
	if stream, ok := b.streams[channel]; ok {
		_ = stream.Close()
		delete(b.streams, channel)
	}
}

// closeChannel closes every subscriber of a channel and its Redis
// stream.
func (b *RedisEventBus) closeChannel(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subscriber := range b.subscribers[channel] {
		close(subscriber)
	}
	delete(b.subscribers, channel)

	if stream, ok := b.streams[channel]; ok {
		delete(b.streams, channel)
		if err := stream.Close(); err != nil {
			return fmt.Errorf("failed to close subscription %s: %w", channel, err)
		}
	}
	return nil
}

// Unsubscribe closes all subscribers of a channel.
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return b.closeChannel(channel)
}

// Close shuts down the bus and every subscription.
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	channels := make([]string, 0, len(b.streams))
	for channel := range b.streams {
		channels = append(channels, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range channels {
		if err := b.closeChannel(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}
	return nil
}
