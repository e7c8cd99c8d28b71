package cache

import (
	"context"
	"time"
)

// DefaultRecordTTL bounds staleness when an invalidation is missed, e.g.
// after a crash between a grid write and the cache delete.
const DefaultRecordTTL = 5 * time.Minute

// RecordCache holds serialized record snapshots keyed by entity kind.
// Mutations invalidate the kind's entry; readers fall through to the grid
// on a miss. A miss is (nil, nil).
type RecordCache interface {
	Get(ctx context.Context, kind string) ([]byte, error)
	Set(ctx context.Context, kind string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, kind string) error
	Close() error
}
