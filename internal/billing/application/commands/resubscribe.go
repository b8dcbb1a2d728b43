package commands

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ResubscribeCommand withdraws a pending cancellation before the period
// end. A user whose subscription already lapsed goes through ChangePlan
// instead, since a fresh gateway subscription is needed.
type ResubscribeCommand struct {
	UserID      uuid.UUID
	RequestedAt time.Time
}

// ResubscribeHandler handles the ResubscribeCommand.
type ResubscribeHandler struct {
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	gateway    domain.PaymentGateway
	cache      domain.SnapshotCache
}

// NewResubscribeHandler creates a new ResubscribeHandler.
func NewResubscribeHandler(
	subRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	gateway domain.PaymentGateway,
	cache domain.SnapshotCache,
) *ResubscribeHandler {
	return &ResubscribeHandler{
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		gateway:    gateway,
		cache:      cache,
	}
}

// Handle executes the ResubscribeCommand.
func (h *ResubscribeHandler) Handle(ctx context.Context, cmd ResubscribeCommand) (*domain.Snapshot, error) {
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

		if !sub.CancelAtPeriodEnd() {
			return domain.ErrInvalidTransition
		}

		if err := h.gateway.ResumeSubscription(txCtx, sub.SubscriptionRef()); err != nil {
			return err
		}
		if err := sub.Reactivate(); err != nil {
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
