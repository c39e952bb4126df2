package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// envelope is the message shape carried on the Redis channel.
type envelope struct {
	Topic  string          `json:"topic"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	SentAt time.Time       `json:"sent_at"`
}

// Bridge relays events through a Redis Pub/Sub channel so every instance
// replays them into its local Hub. Until Run holds a subscription, or when
// Redis rejects a publish, events are delivered to the local Hub directly.
type Bridge struct {
	client     *redis.Client
	channel    string
	hub        *Hub
	subscribed atomic.Bool

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewBridge(client *redis.Client, channel string, hub *Hub) *Bridge {
	return &Bridge{
		client:     client,
		channel:    channel,
		hub:        hub,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

func (b *Bridge) Subscribe(topic string) *Subscription {
	return b.hub.Subscribe(topic)
}

func (b *Bridge) Publish(topic string, ev Event) {
	if topic == "" || ev.Type == "" {
		return
	}
	data, err := json.Marshal(ev.Data)
	if err != nil {
		slog.Error("encode live event", "topic", topic, "type", ev.Type, "err", err)
		return
	}
	body, err := json.Marshal(envelope{Topic: topic, Type: ev.Type, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		slog.Error("encode live envelope", "topic", topic, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = b.client.Publish(ctx, b.channel, body).Err()
	if err != nil {
		slog.Warn("redis publish failed, delivering locally", "channel", b.channel, "err", err)
	}
	if err != nil || !b.subscribed.Load() {
		b.hub.Publish(topic, ev)
	}
}

// Run consumes the channel until ctx is cancelled. A failed subscribe is
// retried with exponential backoff; once subscribed, go-redis reconnects the
// subscription on its own.
func (b *Bridge) Run(ctx context.Context) {
	backoff := b.minBackoff
	for {
		if err := b.consume(ctx); err != nil {
			slog.Warn("redis subscribe failed, retrying", "channel", b.channel, "in", backoff, "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > b.maxBackoff {
			backoff = b.maxBackoff
		}
	}
}

func (b *Bridge) consume(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	b.subscribed.Store(true)
	defer b.subscribed.Store(false)
	slog.Info("live event bridge subscribed", "channel", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(msg.Payload)
		}
	}
}

func (b *Bridge) deliver(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		slog.Warn("decode live envelope", "channel", b.channel, "err", err)
		return
	}
	if env.Topic == "" || env.Type == "" {
		return
	}
	b.hub.Publish(env.Topic, Event{Type: env.Type, Data: env.Data})
}
