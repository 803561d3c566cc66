package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value. A miss is (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.key(key)).Err()
}

// Predefined TTLs
const (
	TTLQuote     = 1 * time.Minute // 장중 시세
	TTLCalendar  = 1 * time.Hour   // 실적 발표 일정
	TTLMarketCap = 24 * time.Hour  // 시가총액
)

// QuoteKey is the cache key for one symbol's quote
func QuoteKey(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}

// MarketCapKey is the cache key for one symbol's market cap
func MarketCapKey(symbol string) string {
	return fmt.Sprintf("mcap:%s", symbol)
}

// CalendarKey is the cache key for one source's earnings calendar day
func CalendarKey(source string, day time.Time) string {
	return fmt.Sprintf("calendar:%s:%s", source, day.Format("2006-01-02"))
}
