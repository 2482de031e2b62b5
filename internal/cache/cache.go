package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/media-migration/internal/types"
)

// Cache key patterns
const (
	LastRunKey = "media_migration:last_run"
)

// Cache durations
const (
	LastRunCacheDuration = 30 * 24 * time.Hour // kept long enough to compare against the next run
)

// RunCache keeps the outcome of the most recent migration run in Redis.
// Audits are never cached; they always read the live tables.
type RunCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRunCache(redisClient *redis.Client) *RunCache {
	return &RunCache{
		redis: redisClient,
		ttl:   LastRunCacheDuration,
	}
}

// SaveLastRun overwrites the stored run
func (c *RunCache) SaveLastRun(ctx context.Context, run types.RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	if err := c.redis.Set(ctx, LastRunKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	return nil
}

// GetLastRun returns the stored run, or false when none has been recorded
func (c *RunCache) GetLastRun(ctx context.Context) (types.RunRecord, bool, error) {
	var run types.RunRecord

	cached, err := c.redis.Get(ctx, LastRunKey).Result()
	if errors.Is(err, redis.Nil) {
		return run, false, nil
	}
	if err != nil {
		return run, false, fmt.Errorf("failed to read last run: %w", err)
	}

	if err := json.Unmarshal([]byte(cached), &run); err != nil {
		return run, false, fmt.Errorf("failed to decode last run: %w", err)
	}
	return run, true, nil
}
