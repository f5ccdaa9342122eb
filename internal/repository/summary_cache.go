package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisSummaryCache struct {
	client *redis.Client
}

// NewSummaryCache returns a redis-backed SummaryCache. Cache misses and
// redis failures both read as "not cached"; callers fall through to the
// engine and the database.
func NewSummaryCache(client *redis.Client) SummaryCache {
	return &redisSummaryCache{client: client}
}

func (c *redisSummaryCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *redisSummaryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisSummaryCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// LoanSummaryKey is the cache key for one loan's derived summary.
func LoanSummaryKey(loanID string) string {
	return "summary:loan:" + loanID
}

// DashboardKey is the cache key for a client's dashboard.
func DashboardKey(clientID string) string {
	return "summary:dashboard:" + clientID
}
