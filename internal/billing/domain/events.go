package domain

import (
	"time"

	sharedDomain "github.com/draftwise/draftwise/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Subscription"

// SubscriptionCreated is emitted when a user's free subscription is created
// at signup.
type SubscriptionCreated struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Tier           string    `json:"tier"`
}

// NewSubscriptionCreated creates a SubscriptionCreated event.
func NewSubscriptionCreated(s *Subscription) *SubscriptionCreated {
	return &SubscriptionCreated{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.created"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		Tier:           string(s.Tier()),
	}
}

// TrialStarted is emitted when a free user starts a paid-tier trial.
type TrialStarted struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Tier           string    `json:"tier"`
	Interval       string    `json:"interval"`
	TrialEnd       time.Time `json:"trial_end"`
}

// NewTrialStarted creates a TrialStarted event.
func NewTrialStarted(s *Subscription) *TrialStarted {
	return &TrialStarted{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.trial_started"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		Tier:           string(s.Tier()),
		Interval:       string(s.Interval()),
		TrialEnd:       s.PeriodEnd(),
	}
}

// PlanChanged is emitted when a tier or interval change applies
// immediately: paid signup after a used trial, upgrades, and lateral
// interval switches.
type PlanChanged struct {
	sharedDomain.BaseEvent
	SubscriptionID     uuid.UUID `json:"subscription_id"`
	UserID             uuid.UUID `json:"user_id"`
	PreviousTier       string    `json:"previous_tier"`
	Tier               string    `json:"tier"`
	Interval           string    `json:"interval"`
	AmountChargedCents int64     `json:"amount_charged_cents"`
}

// NewPlanChanged creates a PlanChanged event.
func NewPlanChanged(s *Subscription, previousTier Tier, amountChargedCents int64) *PlanChanged {
	return &PlanChanged{
		BaseEvent:          sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.plan_changed"),
		SubscriptionID:     s.ID(),
		UserID:             s.UserID(),
		PreviousTier:       string(previousTier),
		Tier:               string(s.Tier()),
		Interval:           string(s.Interval()),
		AmountChargedCents: amountChargedCents,
	}
}

// DowngradeScheduled is emitted when a downgrade is deferred to the period
// boundary.
type DowngradeScheduled struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	FromTier       string    `json:"from_tier"`
	ToTier         string    `json:"to_tier"`
	EffectiveAt    time.Time `json:"effective_at"`
}

// NewDowngradeScheduled creates a DowngradeScheduled event.
func NewDowngradeScheduled(s *Subscription, toTier Tier, effectiveAt time.Time) *DowngradeScheduled {
	return &DowngradeScheduled{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.downgrade_scheduled"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		FromTier:       string(s.Tier()),
		ToTier:         string(toTier),
		EffectiveAt:    effectiveAt,
	}
}

// ScheduledChangeCancelled is emitted when a pending downgrade is
// withdrawn before the boundary.
type ScheduledChangeCancelled struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
}

// NewScheduledChangeCancelled creates a ScheduledChangeCancelled event.
func NewScheduledChangeCancelled(s *Subscription) *ScheduledChangeCancelled {
	return &ScheduledChangeCancelled{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.scheduled_change_cancelled"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
	}
}

// CancellationRequested is emitted when a paid subscription is flagged to
// lapse at period end.
type CancellationRequested struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Tier           string    `json:"tier"`
	EffectiveAt    time.Time `json:"effective_at"`
}

// NewCancellationRequested creates a CancellationRequested event.
func NewCancellationRequested(s *Subscription) *CancellationRequested {
	return &CancellationRequested{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.cancellation_requested"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		Tier:           string(s.Tier()),
		EffectiveAt:    s.PeriodEnd(),
	}
}

// SubscriptionReactivated is emitted when a pending cancellation is
// cleared before the period end.
type SubscriptionReactivated struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Tier           string    `json:"tier"`
}

// NewSubscriptionReactivated creates a SubscriptionReactivated event.
func NewSubscriptionReactivated(s *Subscription) *SubscriptionReactivated {
	return &SubscriptionReactivated{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.reactivated"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		Tier:           string(s.Tier()),
	}
}

// SubscriptionLapsed is emitted when a pending cancellation lands at the
// period boundary and the subscription reverts to the free tier.
type SubscriptionLapsed struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	PreviousTier   string    `json:"previous_tier"`
}

// NewSubscriptionLapsed creates a SubscriptionLapsed event.
func NewSubscriptionLapsed(s *Subscription, previousTier Tier) *SubscriptionLapsed {
	return &SubscriptionLapsed{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.lapsed"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		PreviousTier:   string(previousTier),
	}
}

// ScheduledChangeApplied is emitted when a deferred downgrade commits at
// the period boundary.
type ScheduledChangeApplied struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	PreviousTier   string    `json:"previous_tier"`
	Tier           string    `json:"tier"`
}

// NewScheduledChangeApplied creates a ScheduledChangeApplied event.
func NewScheduledChangeApplied(s *Subscription, previousTier Tier) *ScheduledChangeApplied {
	return &ScheduledChangeApplied{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.scheduled_change_applied"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		PreviousTier:   string(previousTier),
		Tier:           string(s.Tier()),
	}
}

// PeriodRolled is emitted when the billing period advances and the usage
// counter resets.
type PeriodRolled struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Tier           string    `json:"tier"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
}

// NewPeriodRolled creates a PeriodRolled event.
func NewPeriodRolled(s *Subscription) *PeriodRolled {
	return &PeriodRolled{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, "billing.subscription.period_rolled"),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		Tier:           string(s.Tier()),
		PeriodStart:    s.PeriodStart(),
		PeriodEnd:      s.PeriodEnd(),
	}
}
