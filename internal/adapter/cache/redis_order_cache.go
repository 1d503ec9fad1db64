package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nahuarce12/ecommerce/internal/usecase"
)

// RedisOrderCache keeps the latest order status so the status page does not
// hit MySQL on every poll. Best-effort: callers ignore write failures.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

func (r *RedisOrderCache) SetStatus(ctx context.Context, orderID string, status string) error {
	return r.rdb.Set(ctx, "order:status:"+orderID, status, r.ttl).Err()
}

func (r *RedisOrderCache) GetStatus(ctx context.Context, orderID string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, "order:status:"+orderID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.OrderCache = (*RedisOrderCache)(nil)
