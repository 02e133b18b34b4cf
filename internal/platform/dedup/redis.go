package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dedup:"

// Redis backs the suppression guard with a shared store, for multi-instance
// deployments where a per-process map would not deduplicate across
// processes.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) LastSent(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("dedup lookup: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("dedup entry corrupt: %w", err)
	}
	return at, true, nil
}

func (r *Redis) MarkSent(ctx context.Context, key string, at time.Time) error {
	if err := r.client.Set(ctx, keyPrefix+key, at.Format(time.RFC3339Nano), r.ttl).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}
