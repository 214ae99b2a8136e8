package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/pkg/logger"
)

const (
	// DefaultTTL is the default TTL for cached summaries
	DefaultTTL = 60 * time.Second

	// KeyPrefix is the prefix for summary cache keys
	KeyPrefix = "summary:"
)

// SummaryCache is a Redis-backed cache of monthly summary reports, keyed by
// user and month. A miss or a Redis failure just means callers recompute from
// the store; the cache is never authoritative.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewSummaryCache creates a new summary cache
func NewSummaryCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SummaryCache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "summary_cache"),
	}
}

func summaryKey(userID uuid.UUID, month ledger.Month) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefix, userID, month)
}

// Get retrieves a cached summary report for a user and month
func (c *SummaryCache) Get(ctx context.Context, userID uuid.UUID, month ledger.Month) (*ledger.SummaryReport, bool, error) {
	key := summaryKey(userID, month)

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "user_id", userID, "month", month.String())
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "user_id", userID, "error", err)
		return nil, false, fmt.Errorf("failed to get cached summary: %w", err)
	}

	var report ledger.SummaryReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached summary: %w", err)
	}

	c.logger.Debug("cache hit", "user_id", userID, "month", month.String())
	return &report, true, nil
}

// Set stores a summary report in the cache
func (c *SummaryCache) Set(ctx context.Context, userID uuid.UUID, month ledger.Month, report *ledger.SummaryReport) error {
	key := summaryKey(userID, month)

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "user_id", userID, "error", err)
		return fmt.Errorf("failed to set cached summary: %w", err)
	}

	return nil
}

// Invalidate drops every cached summary for a user. Called after any journal
// mutation, since a backdated entry can change many months at once.
func (c *SummaryCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	pattern := fmt.Sprintf("%s%s:*", KeyPrefix, userID)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("cache error", "operation", "invalidate", "user_id", userID, "error", err)
		return fmt.Errorf("failed to scan summary keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("cache error", "operation", "invalidate", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete summary keys: %w", err)
	}

	return nil
}
