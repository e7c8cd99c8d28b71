package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecordCache implements RecordCache using Redis. Suitable for
// deployments where several instances serve the same workbook.
type RedisRecordCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisRecordCache creates a new Redis-based record cache
func NewRedisRecordCache(cfg RedisConfig) (*RedisRecordCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRecordCache{
		client:    client,
		keyPrefix: "records:",
	}, nil
}

// NewRedisRecordCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisRecordCacheWithClient(client *redis.Client, keyPrefix string) *RedisRecordCache {
	if keyPrefix == "" {
		keyPrefix = "records:"
	}
	return &RedisRecordCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached snapshot for the kind, or nil on a miss.
func (c *RedisRecordCache) Get(ctx context.Context, kind string) ([]byte, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+kind).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record cache: %w", err)
	}
	return payload, nil
}

// Set stores a snapshot for the kind.
func (c *RedisRecordCache) Set(ctx context.Context, kind string, payload []byte, ttl time.Duration) error {
	if payload == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultRecordTTL
	}
	if err := c.client.Set(ctx, c.keyPrefix+kind, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write record cache: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot for the kind.
func (c *RedisRecordCache) Invalidate(ctx context.Context, kind string) error {
	if err := c.client.Del(ctx, c.keyPrefix+kind).Err(); err != nil {
		return fmt.Errorf("failed to invalidate record cache: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (c *RedisRecordCache) Close() error {
	return c.client.Close()
}

// Ensure RedisRecordCache implements RecordCache
var _ RecordCache = (*RedisRecordCache)(nil)
