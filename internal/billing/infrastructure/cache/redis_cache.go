// Package cache provides SnapshotCache implementations. The Redis cache backs
// server deployments; the in-memory cache backs local mode and tests.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL bounds staleness if an invalidation is ever lost.
const DefaultSnapshotTTL = 5 * time.Minute

// RedisSnapshotCache implements SnapshotCache with Redis. Snapshots are
// stored as JSON under billing:snapshot:{user_id}.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotCache creates a cache. A non-positive ttl falls back to
// DefaultSnapshotTTL.
func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(userID uuid.UUID) string {
	return "billing:snapshot:" + userID.String()
}

// Get returns the cached snapshot, or nil on a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context, userID uuid.UUID) (*domain.Snapshot, error) {
	raw, err := c.client.Get(ctx, snapshotKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, snapshotKey(userID)).Err()
		return nil, nil
	}
	return &snapshot, nil
}

// Set stores a snapshot under the configured TTL.
func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(snapshot.UserID), raw, c.ttl).Err()
}

// Invalidate drops the cached snapshot for a user.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, snapshotKey(userID)).Err()
}
