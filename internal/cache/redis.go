package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mmynk/owwn/internal/calculator"
)

const (
	keyPrefix = "owwn:balances:"
	genPrefix = "owwn:balances:gen:"
)

// Key returns the Redis key holding a group's report.
func Key(groupID string) string {
	return keyPrefix + groupID
}

// GenKey returns the Redis key holding a group's generation counter.
func GenKey(groupID string) string {
	return genPrefix + groupID
}

// entry is the stored form of a report, tagged with its generation.
type entry struct {
	Generation int64              `json:"generation"`
	Report     *calculator.Report `json:"report"`
}

// RedisCache stores reports as JSON strings with a TTL. Generations are
// plain counters bumped with INCR and never expire.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ BalanceCache = (*RedisCache)(nil)

// NewRedisCache creates a cache on top of client. A zero ttl keeps entries
// until they are invalidated.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get reads the generation and the report in one MGET. A missing key, or a
// report stored under an older generation, is a miss.
func (c *RedisCache) Get(ctx context.Context, groupID string) (*calculator.Report, int64, error) {
	vals, err := c.client.MGet(ctx, GenKey(groupID), Key(groupID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read balances from redis: %w", err)
	}
	if len(vals) != 2 {
		return nil, 0, fmt.Errorf("unexpected MGET reply with %d values", len(vals))
	}

	var gen int64
	if s, ok := vals[0].(string); ok {
		if gen, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("failed to decode balance generation: %w", err)
		}
	}

	data, ok := vals[1].(string)
	if !ok {
		return nil, gen, nil
	}
	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, 0, fmt.Errorf("failed to decode cached balances: %w", err)
	}
	if e.Generation != gen || e.Report == nil {
		return nil, gen, nil
	}
	return e.Report, gen, nil
}

// Set stores a report under the group's key, tagged with gen.
func (c *RedisCache) Set(ctx context.Context, groupID string, gen int64, report *calculator.Report) error {
	data, err := json.Marshal(entry{Generation: gen, Report: report})
	if err != nil {
		return fmt.Errorf("failed to encode balances: %w", err)
	}
	if err := c.client.Set(ctx, Key(groupID), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write balances to redis: %w", err)
	}
	return nil
}

// Invalidate bumps the group's generation, which retires any stored report
// and any report still being computed.
func (c *RedisCache) Invalidate(ctx context.Context, groupID string) error {
	if err := c.client.Incr(ctx, GenKey(groupID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate balances: %w", err)
	}
	return nil
}
