package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultReportTTL bounds staleness for dashboards that nobody has
// paid an order into recently. Paid transitions invalidate eagerly, so
// the TTL is a backstop, not the primary freshness mechanism.
const DefaultReportTTL = 5 * time.Minute

// ReportCache stores rendered report payloads in Redis, keyed per
// restaurant. A nil *ReportCache is valid and disables caching, so
// callers never need to branch on whether Redis is configured.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

func reportKey(restaurantID uuid.UUID, topN int) string {
	return fmt.Sprintf("report:%s:%d", restaurantID, topN)
}

// Get returns the cached payload for a restaurant's report, or nil on
// miss. Redis errors degrade to a miss.
func (c *ReportCache) Get(ctx context.Context, restaurantID uuid.UUID, topN int) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := c.client.Get(ctx, reportKey(restaurantID, topN)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("ERROR: report cache get: %v", err)
		}
		return nil
	}
	return data
}

func (c *ReportCache) Set(ctx context.Context, restaurantID uuid.UUID, topN int, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, reportKey(restaurantID, topN), payload, c.ttl).Err(); err != nil {
		log.Printf("ERROR: report cache set: %v", err)
	}
}

// Invalidate drops every cached report variant for a restaurant.
func (c *ReportCache) Invalidate(ctx context.Context, restaurantID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	pattern := fmt.Sprintf("report:%s:*", restaurantID)
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		log.Printf("ERROR: report cache scan: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("ERROR: report cache invalidate: %v", err)
	}
}
