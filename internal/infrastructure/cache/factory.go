package cache

import (
	"fmt"

	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RecordCacheFactory creates record caches based on configuration
type RecordCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RecordCacheFactoryOption is a functional option for configuring the factory
type RecordCacheFactoryOption func(*RecordCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RecordCacheFactoryOption {
	return func(f *RecordCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) RecordCacheFactoryOption {
	return func(f *RecordCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRecordCacheFactory creates a new factory
func NewRecordCacheFactory(cfg config.RedisConfig, opts ...RecordCacheFactoryOption) *RecordCacheFactory {
	f := &RecordCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache picks a backend based on configuration. Redis when enabled,
// in-memory otherwise; a Redis connection failure falls back to in-memory
// unless fallback is disallowed.
func (f *RecordCacheFactory) CreateCache() (RecordCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory record cache")
		return NewInMemoryRecordCache(WithInMemoryLogger(f.logger)), nil
	}

	cache, err := NewRedisRecordCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis record cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for record cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory record cache. "+
		"Instances will not share cached snapshots.",
		zap.Error(err),
	)
	return NewInMemoryRecordCache(WithInMemoryLogger(f.logger)), nil
}
