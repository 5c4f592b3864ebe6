package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// dispatchQueue is the Redis list drained by the external delivery
// collaborator.
const dispatchQueue = "heirloom:notifications:outbound"

// Dispatcher hands notifications to an external delivery system.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// RedisDispatcher pushes notifications onto a Redis list consumed by the
// delivery collaborator.
type RedisDispatcher struct {
	client *redis.Client
}

func NewRedisDispatcher(client *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{client: client}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := d.client.LPush(ctx, dispatchQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}
