package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

const snapshotKeyPrefix = "kpi_snapshot:"

// SnapshotCache stores precomputed KPI payloads in Redis, keyed by KPI
// kind. Entries expire on their own; the warm job refreshes them.
type SnapshotCache struct {
	client *redis.Client
}

// NewSnapshotCache creates a new Redis snapshot cache.
func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

// Set stores a serialized KPI result with the given expiry.
func (c *SnapshotCache) Set(ctx context.Context, kind kpi.Kind, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, snapshotKeyPrefix+string(kind), payload, ttl).Err(); err != nil {
		return fmt.Errorf("storing snapshot %s: %w", kind, err)
	}
	return nil
}

// Get returns the cached payload for the kind, or (nil, nil) when the
// entry is missing or expired.
func (c *SnapshotCache) Get(ctx context.Context, kind kpi.Kind) ([]byte, error) {
	payload, err := c.client.Get(ctx, snapshotKeyPrefix+string(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", kind, err)
	}
	return payload, nil
}
