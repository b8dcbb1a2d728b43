package commands

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/google/uuid"
)

// SyncPeriodEndCommand refreshes the local period end from a gateway
// webhook. The gateway is the source of truth for billing dates; webhooks
// keep the local copy honest when renewals happen out of band.
type SyncPeriodEndCommand struct {
	SubscriptionRef string
	PeriodEnd       time.Time
	Observed        time.Time
}

// SyncPeriodEndHandler handles the SyncPeriodEndCommand.
type SyncPeriodEndHandler struct {
	subRepo domain.SubscriptionRepository
	uow     sharedApplication.UnitOfWork
	cache   domain.SnapshotCache
}

// NewSyncPeriodEndHandler creates a new SyncPeriodEndHandler.
func NewSyncPeriodEndHandler(subRepo domain.SubscriptionRepository, uow sharedApplication.UnitOfWork, cache domain.SnapshotCache) *SyncPeriodEndHandler {
	return &SyncPeriodEndHandler{
		subRepo: subRepo,
		uow:     uow,
		cache:   cache,
	}
}

// Handle executes the SyncPeriodEndCommand. Unknown refs are ignored:
// webhooks can arrive for subscriptions this instance never created.
func (h *SyncPeriodEndHandler) Handle(ctx context.Context, cmd SyncPeriodEndCommand) error {
	now := cmd.Observed
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var userID uuid.UUID
	found := false

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindBySubscriptionRef(txCtx, cmd.SubscriptionRef)
		if err != nil {
			return err
		}
		if sub == nil {
			return nil
		}
		found = true
		userID = sub.UserID()

		// The local roll may still be behind; settle it first, then take
		// the gateway's word for the boundary.
		sub.ResetIfDue(now)
		sub.SetPeriodEnd(cmd.PeriodEnd)

		return h.subRepo.Update(txCtx, sub)
	})
	if err != nil {
		return err
	}

	if found {
		invalidate(ctx, h.cache, userID)
	}
	return nil
}
