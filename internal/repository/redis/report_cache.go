package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketPulse/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no cached report exists for a key.
var ErrCacheMiss = errors.New("report not cached")

// ReportCache stores rendered analytics reports keyed by operation and
// query parameters so repeated dashboard loads skip recomputation.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(operation, params string) string {
	return fmt.Sprintf("report:%s:%s", operation, params)
}

func (c *ReportCache) Get(ctx context.Context, operation, params string, out any) error {
	data, err := c.client.Get(ctx, cacheKey(operation, params)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ReportCacheLookups.WithLabelValues("miss").Inc()
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cached report: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	metrics.ReportCacheLookups.WithLabelValues("hit").Inc()
	return nil
}

func (c *ReportCache) Set(ctx context.Context, operation, params string, report any) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(operation, params), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	return nil
}

func (c *ReportCache) Invalidate(ctx context.Context, operation string) error {
	pattern := fmt.Sprintf("report:%s:*", operation)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate cached report: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached reports: %w", err)
	}

	return nil
}
