package commands

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ConsumeQuotaCommand spends one draft from the user's monthly quota.
type ConsumeQuotaCommand struct {
	UserID      uuid.UUID
	RequestedAt time.Time
}

// ConsumeQuotaResult reports the counter after a successful consume.
type ConsumeQuotaResult struct {
	UsageCount      int
	MonthlyLimit    int
	RemainingDrafts int
	Unlimited       bool
}

// ConsumeQuotaHandler runs the reset check before consuming, so the
// counter is never checked against a stale period, and persists a due
// period roll even when the consume itself is rejected.
type ConsumeQuotaHandler struct {
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	cache      domain.SnapshotCache
}

// NewConsumeQuotaHandler creates a new ConsumeQuotaHandler.
func NewConsumeQuotaHandler(
	subRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache domain.SnapshotCache,
) *ConsumeQuotaHandler {
	return &ConsumeQuotaHandler{
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
	}
}

// Handle executes the ConsumeQuotaCommand.
func (h *ConsumeQuotaHandler) Handle(ctx context.Context, cmd ConsumeQuotaCommand) (*ConsumeQuotaResult, error) {
	now := cmd.RequestedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var (
		result     *ConsumeQuotaResult
		consumeErr error
		persisted  bool
	)

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}

		rolled := sub.ResetIfDue(now)
		consumeErr = sub.CheckAndConsume()

		if consumeErr != nil && !rolled {
			// Nothing changed; skip the write and surface the quota error.
			return consumeErr
		}

		if err := h.subRepo.Update(txCtx, sub); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, sub); err != nil {
			return err
		}

		persisted = true
		result = &ConsumeQuotaResult{
			UsageCount:      sub.UsageCount(),
			MonthlyLimit:    sub.MonthlyLimit(),
			RemainingDrafts: sub.RemainingDrafts(),
			Unlimited:       sub.IsUnlimited(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if persisted {
		invalidate(ctx, h.cache, cmd.UserID)
	}
	if consumeErr != nil {
		return nil, consumeErr
	}
	return result, nil
}
