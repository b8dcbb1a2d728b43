package commands

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ChangePlanCommand asks for a move to a new tier or billing interval.
// RequestID doubles as the gateway idempotency key, so retrying a timed
// out request cannot double charge.
type ChangePlanCommand struct {
	RequestID      uuid.UUID
	UserID         uuid.UUID
	Email          string
	TargetTier     domain.Tier
	TargetInterval domain.Interval
	RequestedAt    time.Time
}

// ChangePlanResult reports what the state machine decided.
type ChangePlanResult struct {
	Kind         domain.ChangeKind
	Subscription domain.Snapshot
	Quote        *domain.ProrationQuote
	TrialStarted bool
	Scheduled    bool
}

// ChangePlanHandler validates a plan change against the current
// subscription state, charges through the gateway when the change applies
// immediately, and schedules it when it must wait for the period boundary.
type ChangePlanHandler struct {
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	gateway    domain.PaymentGateway
	calculator *domain.ProrationCalculator
	cache      domain.SnapshotCache
	trialDays  int
}

// NewChangePlanHandler creates a new ChangePlanHandler.
func NewChangePlanHandler(
	subRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	gateway domain.PaymentGateway,
	calculator *domain.ProrationCalculator,
	cache domain.SnapshotCache,
	trialDays int,
) *ChangePlanHandler {
	return &ChangePlanHandler{
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		gateway:    gateway,
		calculator: calculator,
		cache:      cache,
		trialDays:  trialDays,
	}
}

// Handle executes the ChangePlanCommand.
func (h *ChangePlanHandler) Handle(ctx context.Context, cmd ChangePlanCommand) (*ChangePlanResult, error) {
	if !cmd.TargetTier.IsValid() {
		return nil, domain.ErrInvalidTransition
	}
	if cmd.TargetTier.IsPaid() && !cmd.TargetInterval.IsValid() {
		return nil, domain.ErrInvalidTransition
	}
	if cmd.RequestID == uuid.Nil {
		cmd.RequestID = uuid.New()
	}
	now := cmd.RequestedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var result *ChangePlanResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}

		sub.ResetIfDue(now)

		targetInterval := cmd.TargetInterval
		if !cmd.TargetTier.IsPaid() {
			targetInterval = sub.Interval()
		}
		kind := domain.Classify(sub.Tier(), sub.Interval(), cmd.TargetTier, targetInterval)
		if kind == domain.ChangeNone {
			return domain.ErrNoOpChange
		}

		result = &ChangePlanResult{Kind: kind}

		switch {
		case sub.Tier() == domain.TierFree:
			if err := h.startPaid(txCtx, cmd, sub, now, result); err != nil {
				return err
			}
		case kind == domain.ChangeDowngrade:
			if err := h.scheduleDowngrade(txCtx, cmd, sub, result); err != nil {
				return err
			}
		default:
			if err := h.applyImmediate(txCtx, cmd, sub, now, result); err != nil {
				return err
			}
		}

		if err := h.subRepo.Update(txCtx, sub); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, sub); err != nil {
			return err
		}
		result.Subscription = domain.SnapshotOf(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, h.cache, cmd.UserID)
	return result, nil
}

// startPaid moves a free user onto a paid plan: a fresh trial when one is
// still available, otherwise an immediate full-price subscription.
func (h *ChangePlanHandler) startPaid(ctx context.Context, cmd ChangePlanCommand, sub *domain.Subscription, now time.Time, result *ChangePlanResult) error {
	customerRef := sub.CustomerRef()
	if customerRef == "" {
		ref, err := h.gateway.CreateCustomer(ctx, cmd.UserID, cmd.Email)
		if err != nil {
			return err
		}
		customerRef = ref
		sub.SetCustomerRef(ref)
	}

	params := domain.CreateSubscriptionParams{
		IdempotencyKey: cmd.RequestID,
		CustomerRef:    customerRef,
		Email:          cmd.Email,
		UserID:         cmd.UserID,
		Tier:           cmd.TargetTier,
		Interval:       cmd.TargetInterval,
	}
	if !sub.HasUsedTrial() {
		params.TrialDays = h.trialDays
	}

	gw, err := h.gateway.CreateSubscription(ctx, params)
	if err != nil {
		return err
	}

	if params.TrialDays > 0 {
		trialEnd := gw.PeriodEnd
		if gw.TrialEnd != nil {
			trialEnd = *gw.TrialEnd
		}
		if err := sub.StartTrial(cmd.TargetTier, cmd.TargetInterval, now, trialEnd, gw.SubscriptionRef); err != nil {
			return err
		}
		result.TrialStarted = true
		return nil
	}

	amount := domain.Price(cmd.TargetTier, cmd.TargetInterval)
	return sub.ActivatePaid(cmd.TargetTier, cmd.TargetInterval, now, gw.PeriodEnd, gw.SubscriptionRef, amount)
}

// applyImmediate handles upgrades and interval switches: quote, charge,
// then mutate. Local state only changes after the gateway confirms.
func (h *ChangePlanHandler) applyImmediate(ctx context.Context, cmd ChangePlanCommand, sub *domain.Subscription, now time.Time, result *ChangePlanResult) error {
	if sub.CancelAtPeriodEnd() {
		if err := h.gateway.ResumeSubscription(ctx, sub.SubscriptionRef()); err != nil {
			return err
		}
		if err := sub.Reactivate(); err != nil {
			return err
		}
	}

	quote := h.calculator.Quote(
		sub.Tier(), sub.Interval(),
		cmd.TargetTier, cmd.TargetInterval,
		sub.PeriodStart(), sub.PeriodEnd(), now,
	)
	result.Quote = &quote

	gw, err := h.gateway.UpdateSubscription(ctx, domain.UpdateSubscriptionParams{
		IdempotencyKey:  cmd.RequestID,
		SubscriptionRef: sub.SubscriptionRef(),
		Tier:            cmd.TargetTier,
		Interval:        cmd.TargetInterval,
		Proration:       domain.ProrationCharge,
	})
	if err != nil {
		return err
	}

	return sub.ApplyImmediateChange(cmd.TargetTier, cmd.TargetInterval, gw.PeriodEnd, quote.AmountDueNowCents)
}

// scheduleDowngrade defers the change to the period boundary. A downgrade
// to free cancels the gateway subscription at period end; a downgrade to a
// cheaper paid tier is applied at the gateway when the boundary worker
// rolls the period.
func (h *ChangePlanHandler) scheduleDowngrade(ctx context.Context, cmd ChangePlanCommand, sub *domain.Subscription, result *ChangePlanResult) error {
	if sub.CancelAtPeriodEnd() {
		return domain.ErrInvalidTransition
	}

	if cmd.TargetTier == domain.TierFree {
		if err := h.gateway.CancelSubscription(ctx, sub.SubscriptionRef(), true); err != nil {
			return err
		}
	}

	if err := sub.ScheduleDowngrade(cmd.TargetTier); err != nil {
		return err
	}
	result.Scheduled = true
	return nil
}
