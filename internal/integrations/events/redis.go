package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	DefaultChannel           = "reservations.status"
	DefaultNotificationQueue = "reservations:notifications"
)

// RedisPublisher публикует события в канал Redis Pub/Sub
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client redis.Cmdable, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, change domain.StatusChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrDelivery, err)
	}
	if err := p.client.Publish(ctx, p.channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("%w: publish to %s: %v", ErrDelivery, p.channel, err)
	}
	return nil
}

// RedisNotifier складывает уведомления в список Redis, откуда их забирает сервис доставки
type RedisNotifier struct {
	client redis.Cmdable
	queue  string
}

// NewRedisNotifier создает новый RedisNotifier
func NewRedisNotifier(client redis.Cmdable, queue string) *RedisNotifier {
	if queue == "" {
		queue = DefaultNotificationQueue
	}
	return &RedisNotifier{client: client, queue: queue}
}

func (n *RedisNotifier) Notify(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("%w: marshal notification: %v", ErrDelivery, err)
	}
	if err := n.client.RPush(ctx, n.queue, string(payload)).Err(); err != nil {
		return fmt.Errorf("%w: push to %s: %v", ErrDelivery, n.queue, err)
	}
	return nil
}
