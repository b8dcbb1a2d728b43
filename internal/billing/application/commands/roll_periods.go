package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RollPeriodsCommand advances every subscription whose period end has
// passed: usage counters reset and scheduled changes and cancellations
// commit. The worker runs this on a timer so boundaries land even for
// users who never trigger a quota action.
type RollPeriodsCommand struct {
	Now       time.Time
	BatchSize int
}

// RollPeriodsResult summarizes a sweep.
type RollPeriodsResult struct {
	Rolled  int
	Skipped int
}

// RollPeriodsHandler handles the RollPeriodsCommand.
type RollPeriodsHandler struct {
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	gateway    domain.PaymentGateway
	cache      domain.SnapshotCache
	logger     *slog.Logger
}

// NewRollPeriodsHandler creates a new RollPeriodsHandler.
func NewRollPeriodsHandler(
	subRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	gateway domain.PaymentGateway,
	cache domain.SnapshotCache,
	logger *slog.Logger,
) *RollPeriodsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RollPeriodsHandler{
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		gateway:    gateway,
		cache:      cache,
		logger:     logger,
	}
}

// Handle executes the RollPeriodsCommand. Each subscription rolls in its
// own transaction; one failing row does not block the rest of the sweep.
func (h *RollPeriodsHandler) Handle(ctx context.Context, cmd RollPeriodsCommand) (*RollPeriodsResult, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	batch := cmd.BatchSize
	if batch <= 0 {
		batch = 100
	}

	due, err := h.subRepo.FindDue(ctx, now, batch)
	if err != nil {
		return nil, err
	}

	result := &RollPeriodsResult{}
	for _, stale := range due {
		if err := h.rollOne(ctx, stale.UserID(), now); err != nil {
			// A concurrent writer already moved this row; the next sweep
			// picks it up if anything is still due.
			if errors.Is(err, domain.ErrStaleState) {
				result.Skipped++
				continue
			}
			h.logger.Error("failed to roll billing period",
				"user_id", stale.UserID(),
				"error", err,
			)
			result.Skipped++
			continue
		}
		result.Rolled++
	}
	return result, nil
}

func (h *RollPeriodsHandler) rollOne(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}

		pending := sub.Pending()

		if !sub.ResetIfDue(now) {
			return nil
		}

		// A deferred downgrade to a cheaper paid tier is mirrored to the
		// gateway only now, at the boundary, with no mid-period charge.
		if pending.Kind == domain.PendingDowngrade && pending.Tier.IsPaid() {
			if _, err := h.gateway.UpdateSubscription(txCtx, domain.UpdateSubscriptionParams{
				IdempotencyKey:  sub.ID(),
				SubscriptionRef: sub.SubscriptionRef(),
				Tier:            pending.Tier,
				Interval:        sub.Interval(),
				Proration:       domain.ProrationNone,
			}); err != nil {
				return err
			}
		}

		if err := h.subRepo.Update(txCtx, sub); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, userID, sub); err != nil {
			return err
		}
		invalidate(txCtx, h.cache, userID)
		return nil
	})
}
