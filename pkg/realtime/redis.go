package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

// RedisBus carries change events over Redis pub/sub. It is both the
// Publisher used by the store and the EventSource used by the subscriber.
type RedisBus struct {
	client *redis.Client
	pubsub *redis.PubSub
}

// NewRedisBus connects to Redis and verifies the connection.
func NewRedisBus(ctx context.Context, addr, password string) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("can't ping redis: %w", err)
	}
	return &RedisBus{client: client}, nil
}

// Publish implements Publisher.
func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, event.Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Channel, err)
	}
	return nil
}

// Subscribe implements EventSource. The returned channel closes when the
// underlying subscription is closed or ctx ends.
func (b *RedisBus) Subscribe(ctx context.Context, channels ...string) (<-chan Event, error) {
	pubsub := b.client.Subscribe(ctx, channels...)

	// Receive confirms the subscription before any event can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	b.pubsub = pubsub

	out := make(chan Event)
	msgs := pubsub.Channel()
	go func() {
		defer close(out)
		for {
			select {
			case msg, open := <-msgs:
				if !open {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("realtime: dropping malformed event on %s: %v", msg.Channel, err)
					continue
				}
				if event.Channel == "" {
					event.Channel = msg.Channel
				}
				select {
				case out <- event:
				case <-ctx.Done():
					pubsub.Close()
					return
				}
			case <-ctx.Done():
				// Close the subscription so the channel drains even when
				// the stream is idle.
				pubsub.Close()
				return
			}
		}
	}()
	return out, nil
}

// Close tears down the subscription and the client.
func (b *RedisBus) Close() error {
	if b.pubsub != nil {
		b.pubsub.Close()
	}
	return b.client.Close()
}
