package commands

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CancelSubscriptionCommand flags a paid subscription to lapse at period
// end. Entitlement is retained until the boundary.
type CancelSubscriptionCommand struct {
	UserID      uuid.UUID
	RequestedAt time.Time
}

// CancelSubscriptionHandler handles the CancelSubscriptionCommand.
type CancelSubscriptionHandler struct {
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	gateway    domain.PaymentGateway
	cache      domain.SnapshotCache
}

// NewCancelSubscriptionHandler creates a new CancelSubscriptionHandler.
func NewCancelSubscriptionHandler(
	subRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	gateway domain.PaymentGateway,
	cache domain.SnapshotCache,
) *CancelSubscriptionHandler {
	return &CancelSubscriptionHandler{
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		gateway:    gateway,
		cache:      cache,
	}
}

// Handle executes the CancelSubscriptionCommand.
func (h *CancelSubscriptionHandler) Handle(ctx context.Context, cmd CancelSubscriptionCommand) (*domain.Snapshot, error) {
	now := cmd.RequestedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var snapshot domain.Snapshot

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}

		sub.ResetIfDue(now)

		if !sub.Tier().IsPaid() {
			return domain.ErrInvalidTransition
		}
		if sub.ScheduledTier() != nil {
			return domain.ErrInvalidTransition
		}
		if sub.CancelAtPeriodEnd() {
			return domain.ErrNoOpChange
		}

		if err := h.gateway.CancelSubscription(txCtx, sub.SubscriptionRef(), true); err != nil {
			return err
		}
		if err := sub.RequestCancellation(); err != nil {
			return err
		}

		if err := h.subRepo.Update(txCtx, sub); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, sub); err != nil {
			return err
		}
		snapshot = domain.SnapshotOf(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, h.cache, cmd.UserID)
	return &snapshot, nil
}
