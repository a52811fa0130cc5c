package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

const (
	relayMinBackoff = time.Second
	relayMaxBackoff = 30 * time.Second
)

// RedisBroadcaster publishes events on a Redis channel so every API instance
// can forward them to its own Hub.
type RedisBroadcaster struct {
	client  *goredis.Client
	channel string
	hub     *Hub
}

func NewRedisBroadcaster(client *goredis.Client, channel string, hub *Hub) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: channel, hub: hub}
}

// Publish implements domain.Notifier. When Redis is unreachable the event is
// still delivered to this instance's subscribers.
func (b *RedisBroadcaster) Publish(ctx context.Context, event domain.NewCVEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", domain.EventNewCVUploaded, err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		logger.Log.Warn("Redis publish failed, delivering locally", "channel", b.channel, "error", err)
		b.hub.broadcast(event)
	}
	return nil
}

// Run forwards channel messages to the hub until ctx is done, resubscribing
// with exponential backoff whenever the subscription fails.
func (b *RedisBroadcaster) Run(ctx context.Context) {
	backoff := relayMinBackoff
	for {
		started := time.Now()
		err := b.relay(ctx)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > relayMaxBackoff {
			backoff = relayMinBackoff
		}
		logger.Log.Warn("CV event relay interrupted", "channel", b.channel, "error", err, "retry_in", backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if backoff *= 2; backoff > relayMaxBackoff {
			backoff = relayMaxBackoff
		}
	}
}

func (b *RedisBroadcaster) relay(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	logger.Log.Info("Listening for CV events", "channel", b.channel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("redis subscription %s closed", b.channel)
			}
			event, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				logger.Log.Warn("Discarding malformed CV event", "error", err)
				continue
			}
			b.hub.broadcast(event)
		}
	}
}

// DecodeEvent parses a published event.
func DecodeEvent(payload []byte) (domain.NewCVEvent, error) {
	var event domain.NewCVEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.NewCVEvent{}, err
	}
	return event, nil
}
