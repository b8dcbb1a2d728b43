package queries

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
)

// PreviewChangeQuery asks what a plan change would cost without applying
// anything.
type PreviewChangeQuery struct {
	UserID         uuid.UUID
	TargetTier     domain.Tier
	TargetInterval domain.Interval
	At             time.Time
}

// PreviewChangeResult is the quoted outcome of a hypothetical change.
type PreviewChangeResult struct {
	Kind  domain.ChangeKind
	Quote domain.ProrationQuote
}

// PreviewChangeHandler quotes a plan change. The local calculator is the
// baseline; when the gateway holds the subscription, its own proration
// preview overrides the local amount, since it owns the billing dates.
type PreviewChangeHandler struct {
	subRepo    domain.SubscriptionRepository
	calculator *domain.ProrationCalculator
	gateway    domain.PaymentGateway
}

// NewPreviewChangeHandler creates a new PreviewChangeHandler.
func NewPreviewChangeHandler(subRepo domain.SubscriptionRepository, calculator *domain.ProrationCalculator, gateway domain.PaymentGateway) *PreviewChangeHandler {
	return &PreviewChangeHandler{
		subRepo:    subRepo,
		calculator: calculator,
		gateway:    gateway,
	}
}

// Handle executes the PreviewChangeQuery. The quote is recomputed on every
// call and never cached; prices or the clock may have moved.
func (h *PreviewChangeHandler) Handle(ctx context.Context, query PreviewChangeQuery) (*PreviewChangeResult, error) {
	if !query.TargetTier.IsValid() {
		return nil, domain.ErrInvalidTransition
	}
	now := query.At
	if now.IsZero() {
		now = time.Now().UTC()
	}

	sub, err := h.subRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrSubscriptionNotFound
	}

	targetInterval := query.TargetInterval
	if !query.TargetTier.IsPaid() {
		targetInterval = sub.Interval()
	}
	kind := domain.Classify(sub.Tier(), sub.Interval(), query.TargetTier, targetInterval)
	if kind == domain.ChangeNone {
		return nil, domain.ErrNoOpChange
	}

	quote := h.calculator.Quote(
		sub.Tier(), sub.Interval(),
		query.TargetTier, targetInterval,
		sub.PeriodStart(), sub.PeriodEnd(), now,
	)

	immediate := kind == domain.ChangeUpgrade || kind == domain.ChangeLateral
	if immediate && h.gateway != nil && sub.SubscriptionRef() != "" {
		if amount, err := h.gateway.PreviewProration(ctx, sub.SubscriptionRef(), query.TargetTier, targetInterval); err == nil {
			quote.AmountDueNowCents = amount
		}
	}

	return &PreviewChangeResult{Kind: kind, Quote: quote}, nil
}
