// Package queries contains the read-side handlers for billing. Reads go
// through the snapshot cache; mutations on the command side invalidate it.
package queries

import (
	"context"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
)

// GetSubscriptionQuery fetches the subscription snapshot for a user.
type GetSubscriptionQuery struct {
	UserID uuid.UUID
}

// GetSubscriptionHandler serves reads through the snapshot cache.
type GetSubscriptionHandler struct {
	subRepo domain.SubscriptionRepository
	cache   domain.SnapshotCache
}

// NewGetSubscriptionHandler creates a new GetSubscriptionHandler.
func NewGetSubscriptionHandler(subRepo domain.SubscriptionRepository, cache domain.SnapshotCache) *GetSubscriptionHandler {
	return &GetSubscriptionHandler{
		subRepo: subRepo,
		cache:   cache,
	}
}

// Handle executes the GetSubscriptionQuery. A cache failure degrades to a
// repository read rather than failing the query.
func (h *GetSubscriptionHandler) Handle(ctx context.Context, query GetSubscriptionQuery) (*domain.Snapshot, error) {
	if h.cache != nil {
		if snapshot, err := h.cache.Get(ctx, query.UserID); err == nil && snapshot != nil {
			return snapshot, nil
		}
	}

	sub, err := h.subRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrSubscriptionNotFound
	}

	snapshot := domain.SnapshotOf(sub)
	if h.cache != nil {
		_ = h.cache.Set(ctx, snapshot)
	}
	return &snapshot, nil
}
