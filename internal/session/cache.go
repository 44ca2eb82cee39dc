package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"slotbook/internal/logger"
	"slotbook/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const countKeyPrefix = "session:active_count:"

// Cache keeps per-session active booking counts in redis for listing pages.
// It is strictly an optimization for reads: capacity admission always goes to
// the store, and every booking mutation invalidates the touched session.
// Redis errors degrade to cache misses, and a nil *Cache disables caching
// entirely.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func countKey(sessionID int) string {
	return fmt.Sprintf("%s%d", countKeyPrefix, sessionID)
}

// GetCounts returns cached counts for ids and the ids that were not cached.
func (c *Cache) GetCounts(ctx context.Context, ids []int) (map[int]int, []int) {
	counts := make(map[int]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	if c == nil || c.rdb == nil {
		return counts, ids
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = countKey(id)
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Debug("availability cache read failed", "error", err)
		return counts, ids
	}

	var missing []int
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			missing = append(missing, ids[i])
			continue
		}
		counts[ids[i]] = n
	}

	metrics.RecordCacheLookups(len(counts), len(missing))
	return counts, missing
}

// SetCounts caches counts with the configured TTL.
func (c *Cache) SetCounts(ctx context.Context, counts map[int]int) {
	if c == nil || c.rdb == nil || len(counts) == 0 {
		return
	}

	pipe := c.rdb.Pipeline()
	for id, n := range counts {
		pipe.Set(ctx, countKey(id), strconv.Itoa(n), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Debug("availability cache write failed", "error", err)
	}
}

// Invalidate drops the cached count for a session after a booking mutation.
func (c *Cache) Invalidate(ctx context.Context, sessionID int) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, countKey(sessionID)).Err(); err != nil {
		logger.Debug("availability cache invalidation failed", "session_id", sessionID, "error", err)
	}
}
