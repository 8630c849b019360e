// README: Redis pub/sub change feed; publishes events and fans them out to local handlers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Broker struct {
	redis   *redis.Client
	channel string
	log     logrus.FieldLogger

	mu       sync.RWMutex
	handlers []Handler
}

func NewBroker(redis *redis.Client, channel string, log logrus.FieldLogger) *Broker {
	return &Broker{redis: redis, channel: channel, log: log}
}

func (b *Broker) Register(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Broker) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := b.redis.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Table, err)
	}
	return nil
}

// Run subscribes to the channel and dispatches until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) error {
	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.WithField("channel", b.channel).Info("change feed subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.WithError(err).Warn("dropping malformed change event")
				continue
			}
			b.Dispatch(ctx, e)
		}
	}
}

// Dispatch hands e to every registered handler in registration order.
func (b *Broker) Dispatch(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.HandleEvent(ctx, e)
	}
}
