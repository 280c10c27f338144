package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCounter implements Sequence with the Redis INCR command.
type RedisCounter struct {
	client *redis.Client
	key    string
}

// NewRedisCounter creates a counter stored under key.
// A missing key counts as zero, so the first value is 1.
func NewRedisCounter(client *redis.Client, key string) *RedisCounter {
	return &RedisCounter{
		client: client,
		key:    key,
	}
}

// Next increments the counter and returns the new value.
func (c *RedisCounter) Next(ctx context.Context) (int64, error) {
	v, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %q: %w", c.key, err)
	}
	return v, nil
}
