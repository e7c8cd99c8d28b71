package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const cleanupInterval = 30 * time.Second

// InMemoryRecordCache implements RecordCache with process-local storage.
// Suitable for single-instance deployments and tests.
type InMemoryRecordCache struct {
	entries sync.Map // map[string]*recordEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type recordEntry struct {
	payload   []byte
	expiresAt time.Time
}

func (e *recordEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryRecordCacheOption is a functional option for configuring the cache
type InMemoryRecordCacheOption func(*InMemoryRecordCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryRecordCacheOption {
	return func(c *InMemoryRecordCache) {
		c.logger = logger
	}
}

// NewInMemoryRecordCache creates a new in-memory record cache
func NewInMemoryRecordCache(opts ...InMemoryRecordCacheOption) *InMemoryRecordCache {
	c := &InMemoryRecordCache{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()

	return c
}

// Get returns the cached snapshot for the kind, or nil on a miss.
func (c *InMemoryRecordCache) Get(_ context.Context, kind string) ([]byte, error) {
	if value, ok := c.entries.Load(kind); ok {
		entry := value.(*recordEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("record cache hit", zap.String("kind", kind))
			return entry.payload, nil
		}
		c.entries.Delete(kind)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("record cache miss", zap.String("kind", kind))
	return nil, nil
}

// Set stores a snapshot for the kind.
func (c *InMemoryRecordCache) Set(_ context.Context, kind string, payload []byte, ttl time.Duration) error {
	if payload == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultRecordTTL
	}
	c.entries.Store(kind, &recordEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Invalidate drops the snapshot for the kind.
func (c *InMemoryRecordCache) Invalidate(_ context.Context, kind string) error {
	c.entries.Delete(kind)
	c.logger.Debug("record cache invalidated", zap.String("kind", kind))
	return nil
}

// Close stops the cleanup goroutine.
func (c *InMemoryRecordCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryRecordCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

func (c *InMemoryRecordCache) cleanupExpired() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(*recordEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryRecordCache implements RecordCache
var _ RecordCache = (*InMemoryRecordCache)(nil)
