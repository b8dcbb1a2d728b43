package commands

import (
	"context"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CancelScheduledChangeCommand withdraws a pending downgrade before the
// period boundary. Idempotent: with nothing scheduled it succeeds without
// side effects.
type CancelScheduledChangeCommand struct {
	UserID uuid.UUID
}

// CancelScheduledChangeHandler handles the CancelScheduledChangeCommand.
type CancelScheduledChangeHandler struct {
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	gateway    domain.PaymentGateway
	cache      domain.SnapshotCache
}

// NewCancelScheduledChangeHandler creates a new CancelScheduledChangeHandler.
func NewCancelScheduledChangeHandler(
	subRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	gateway domain.PaymentGateway,
	cache domain.SnapshotCache,
) *CancelScheduledChangeHandler {
	return &CancelScheduledChangeHandler{
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		gateway:    gateway,
		cache:      cache,
	}
}

// Handle executes the CancelScheduledChangeCommand.
func (h *CancelScheduledChangeHandler) Handle(ctx context.Context, cmd CancelScheduledChangeCommand) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}

		scheduled := sub.ScheduledTier()
		if scheduled == nil {
			snapshot = domain.SnapshotOf(sub)
			return nil
		}

		// A downgrade to free was mirrored to the gateway as an
		// at-period-end cancellation; withdraw it there first.
		if *scheduled == domain.TierFree {
			if err := h.gateway.ResumeSubscription(txCtx, sub.SubscriptionRef()); err != nil {
				return err
			}
		}

		sub.CancelScheduledChange()

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
