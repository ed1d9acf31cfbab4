package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contaro/backend/internal/application/currency"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisRateCache is a read-through cache in front of another RateProvider.
// Resolved rates are kept in Redis for the configured TTL so multiple
// instances share the same daily rates.
type RedisRateCache struct {
	client    *redis.Client
	source    currency.RateProvider
	keyPrefix string
	ttl       time.Duration
}

// NewRedisRateCache connects to Redis and wraps the given provider
func NewRedisRateCache(cfg RedisConfig, source currency.RateProvider, ttl time.Duration) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateCacheWithClient(client, source, ttl), nil
}

// NewRedisRateCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisRateCacheWithClient(client *redis.Client, source currency.RateProvider, ttl time.Duration) *RedisRateCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisRateCache{
		client:    client,
		source:    source,
		keyPrefix: "currency:rate:",
		ttl:       ttl,
	}
}

// Rate returns the cached rate for the pair, falling back to the source
// provider on a miss. Redis errors degrade to the source provider rather
// than failing the lookup.
func (c *RedisRateCache) Rate(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	key := c.key(from, to)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil && rate.GreaterThan(decimal.Zero) {
			return rate, nil
		}
		// Corrupt entry, drop it and re-resolve
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// Redis unavailable - serve straight from the source
		return c.source.Rate(ctx, from, to)
	}

	rate, err := c.source.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	c.client.Set(ctx, key, rate.String(), c.ttl)
	return rate, nil
}

// Invalidate removes a cached pair, forcing the next lookup to re-resolve
func (c *RedisRateCache) Invalidate(ctx context.Context, from, to valueobject.Currency) error {
	return c.client.Del(ctx, c.key(from, to)).Err()
}

// Close closes the Redis client
func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

func (c *RedisRateCache) key(from, to valueobject.Currency) string {
	return c.keyPrefix + string(from) + ":" + string(to)
}

var _ currency.RateProvider = (*RedisRateCache)(nil)
