package cache

import (
	"context"
	"sync"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
)

type memoryEntry struct {
	snapshot  domain.Snapshot
	expiresAt time.Time
}

// MemorySnapshotCache implements SnapshotCache with a process-local map.
type MemorySnapshotCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySnapshotCache creates a cache. A non-positive ttl falls back to
// DefaultSnapshotTTL.
func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &MemorySnapshotCache{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached snapshot, or nil on a miss or expired entry.
func (c *MemorySnapshotCache) Get(_ context.Context, userID uuid.UUID) (*domain.Snapshot, error) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return nil, nil
	}
	snapshot := entry.snapshot
	return &snapshot, nil
}

// Set stores a snapshot under the configured TTL.
func (c *MemorySnapshotCache) Set(_ context.Context, snapshot domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snapshot.UserID] = memoryEntry{
		snapshot:  snapshot,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached snapshot for a user.
func (c *MemorySnapshotCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}
