package domain

import (
	"time"

	sharedDomain "github.com/draftwise/draftwise/internal/shared/domain"
	"github.com/google/uuid"
)

// Status represents the subscription lifecycle state. Pending cancellation
// and pending downgrade are flags layered on top of the base status, not
// separate statuses, so their mutual exclusion stays checkable. There is
// no cancelled status: a cancelled subscription stays active with
// CancelAtPeriodEnd set until the boundary, then lands back on the free
// tier, so cancellation is always the flag, never a base state.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusExpired  Status = "expired"
)

// PendingChangeKind tags the pending-change variant on a subscription.
type PendingChangeKind int

const (
	PendingNone PendingChangeKind = iota
	PendingDowngrade
	PendingCancellation
)

// PendingChange describes a deferred change waiting for the period
// boundary. At most one kind is pending at a time.
type PendingChange struct {
	Kind        PendingChangeKind
	Tier        Tier
	EffectiveAt time.Time
}

// Subscription is the aggregate root for a user's plan, quota, and billing
// period. Exactly one exists per user; it is created at signup and never
// deleted. Cancellation reverts it to the free tier at period end.
type Subscription struct {
	sharedDomain.BaseAggregateRoot
	userID              uuid.UUID
	tier                Tier
	interval            Interval
	status              Status
	cancelAtPeriodEnd   bool
	scheduledTier       *Tier
	scheduledChangeDate *time.Time
	periodStart         time.Time
	periodEnd           time.Time
	usageCount          int
	monthlyLimit        int
	hasUsedTrial        bool
	customerRef         string
	subscriptionRef     string
}

// NewFreeSubscription creates the free subscription a user receives at
// signup. The quota window starts immediately and rolls monthly.
func NewFreeSubscription(userID uuid.UUID, now time.Time) *Subscription {
	s := &Subscription{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		tier:              TierFree,
		interval:          IntervalMonthly,
		status:            StatusActive,
		periodStart:       now,
		periodEnd:         AdvancePeriod(IntervalMonthly, now),
		monthlyLimit:      PlanFree.MonthlyDraftLimit,
	}
	s.AddDomainEvent(NewSubscriptionCreated(s))
	return s
}

// SubscriptionState carries persisted columns into RehydrateSubscription.
type SubscriptionState struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	Tier                Tier
	Interval            Interval
	Status              Status
	CancelAtPeriodEnd   bool
	ScheduledTier       *Tier
	ScheduledChangeDate *time.Time
	PeriodStart         time.Time
	PeriodEnd           time.Time
	UsageCount          int
	MonthlyLimit        int
	HasUsedTrial        bool
	CustomerRef         string
	SubscriptionRef     string
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RehydrateSubscription recreates a subscription from persisted state.
func RehydrateSubscription(state SubscriptionState) *Subscription {
	return &Subscription{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(state.ID, state.CreatedAt, state.UpdatedAt),
			state.Version,
		),
		userID:              state.UserID,
		tier:                state.Tier,
		interval:            state.Interval,
		status:              state.Status,
		cancelAtPeriodEnd:   state.CancelAtPeriodEnd,
		scheduledTier:       state.ScheduledTier,
		scheduledChangeDate: state.ScheduledChangeDate,
		periodStart:         state.PeriodStart,
		periodEnd:           state.PeriodEnd,
		usageCount:          state.UsageCount,
		monthlyLimit:        state.MonthlyLimit,
		hasUsedTrial:        state.HasUsedTrial,
		customerRef:         state.CustomerRef,
		subscriptionRef:     state.SubscriptionRef,
	}
}

func (s *Subscription) UserID() uuid.UUID       { return s.userID }
func (s *Subscription) Tier() Tier              { return s.tier }
func (s *Subscription) Interval() Interval      { return s.interval }
func (s *Subscription) Status() Status          { return s.status }
func (s *Subscription) CancelAtPeriodEnd() bool { return s.cancelAtPeriodEnd }
func (s *Subscription) PeriodStart() time.Time  { return s.periodStart }
func (s *Subscription) PeriodEnd() time.Time    { return s.periodEnd }
func (s *Subscription) UsageCount() int         { return s.usageCount }
func (s *Subscription) MonthlyLimit() int       { return s.monthlyLimit }
func (s *Subscription) HasUsedTrial() bool      { return s.hasUsedTrial }
func (s *Subscription) CustomerRef() string     { return s.customerRef }
func (s *Subscription) SubscriptionRef() string { return s.subscriptionRef }

// ScheduledTier returns the pending downgrade target, or nil.
func (s *Subscription) ScheduledTier() *Tier { return s.scheduledTier }

// ScheduledChangeDate returns when the pending downgrade commits, or nil.
func (s *Subscription) ScheduledChangeDate() *time.Time { return s.scheduledChangeDate }

// Pending returns the deferred change waiting for the period boundary.
func (s *Subscription) Pending() PendingChange {
	if s.cancelAtPeriodEnd {
		return PendingChange{Kind: PendingCancellation, Tier: TierFree, EffectiveAt: s.periodEnd}
	}
	if s.scheduledTier != nil {
		return PendingChange{Kind: PendingDowngrade, Tier: *s.scheduledTier, EffectiveAt: *s.scheduledChangeDate}
	}
	return PendingChange{Kind: PendingNone}
}

// IsUnlimited reports whether drafts are not metered on the current plan.
func (s *Subscription) IsUnlimited() bool {
	return s.monthlyLimit >= UnlimitedDrafts
}

// RemainingDrafts returns how many drafts are left this period. Unlimited
// plans report the sentinel.
func (s *Subscription) RemainingDrafts() int {
	if s.IsUnlimited() {
		return UnlimitedDrafts
	}
	remaining := s.monthlyLimit - s.usageCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetPeriodEnd takes the gateway's word for the billing boundary. Used by
// webhook sync; the gateway owns billing dates. The boundary only moves
// forward: a stale or replayed webhook carrying an older period end is a
// no-op, otherwise the next reset would fire early and zero the usage
// counter mid-period.
func (s *Subscription) SetPeriodEnd(periodEnd time.Time) {
	if !periodEnd.After(s.periodEnd) {
		return
	}
	s.periodEnd = periodEnd
	s.Touch()
}

// SetCustomerRef records the gateway customer handle once it exists.
func (s *Subscription) SetCustomerRef(ref string) {
	s.customerRef = ref
	s.Touch()
}

// StartTrial moves a free, never-trialed user onto a paid tier in trialing
// status. No charge happens; periodEnd is the gateway-reported trial end.
func (s *Subscription) StartTrial(tier Tier, interval Interval, now, trialEnd time.Time, subscriptionRef string) error {
	if s.tier != TierFree || s.hasUsedTrial {
		return ErrInvalidTransition
	}
	if !tier.IsPaid() || !interval.IsValid() {
		return ErrInvalidTransition
	}

	s.tier = tier
	s.interval = interval
	s.status = StatusTrialing
	s.periodStart = now
	s.periodEnd = trialEnd
	s.usageCount = 0
	s.monthlyLimit = PlanForTier(tier).MonthlyDraftLimit
	s.hasUsedTrial = true
	s.subscriptionRef = subscriptionRef
	s.Touch()
	s.AddDomainEvent(NewTrialStarted(s))
	return nil
}

// ActivatePaid moves a free user straight onto a paid tier after a
// successful charge. Only called after the gateway confirmed payment.
func (s *Subscription) ActivatePaid(tier Tier, interval Interval, now, periodEnd time.Time, subscriptionRef string, amountChargedCents int64) error {
	if s.tier != TierFree {
		return ErrInvalidTransition
	}
	if !tier.IsPaid() || !interval.IsValid() {
		return ErrInvalidTransition
	}

	previous := s.tier
	s.tier = tier
	s.interval = interval
	s.status = StatusActive
	s.periodStart = now
	s.periodEnd = periodEnd
	s.usageCount = 0
	s.monthlyLimit = PlanForTier(tier).MonthlyDraftLimit
	s.subscriptionRef = subscriptionRef
	s.Touch()
	s.AddDomainEvent(NewPlanChanged(s, previous, amountChargedCents))
	return nil
}

// ApplyImmediateChange commits an upgrade or interval switch on a paid
// subscription. The usage counter carries over; the period end comes from
// the gateway response, never computed locally.
func (s *Subscription) ApplyImmediateChange(tier Tier, interval Interval, periodEnd time.Time, amountChargedCents int64) error {
	if !s.tier.IsPaid() || !tier.IsPaid() || !interval.IsValid() {
		return ErrInvalidTransition
	}

	switch Classify(s.tier, s.interval, tier, interval) {
	case ChangeUpgrade, ChangeLateral:
	default:
		return ErrInvalidTransition
	}

	previous := s.tier
	s.tier = tier
	s.interval = interval
	s.monthlyLimit = PlanForTier(tier).MonthlyDraftLimit
	s.periodEnd = periodEnd
	s.scheduledTier = nil
	s.scheduledChangeDate = nil
	s.Touch()
	s.AddDomainEvent(NewPlanChanged(s, previous, amountChargedCents))
	return nil
}

// ScheduleDowngrade defers a downgrade to the period boundary. The user
// keeps full current-tier entitlement until then. Rejected while a
// cancellation is pending; the two are mutually exclusive and the caller
// must reactivate first.
func (s *Subscription) ScheduleDowngrade(tier Tier) error {
	if s.cancelAtPeriodEnd {
		return ErrInvalidTransition
	}
	if !s.tier.IsPaid() {
		return ErrInvalidTransition
	}
	if Classify(s.tier, s.interval, tier, s.interval) != ChangeDowngrade {
		return ErrInvalidTransition
	}

	effectiveAt := s.periodEnd
	s.AddDomainEvent(NewDowngradeScheduled(s, tier, effectiveAt))
	s.scheduledTier = &tier
	s.scheduledChangeDate = &effectiveAt
	s.Touch()
	return nil
}

// CancelScheduledChange clears a pending downgrade. Idempotent: calling it
// with nothing scheduled is a no-op and reports false.
func (s *Subscription) CancelScheduledChange() bool {
	if s.scheduledTier == nil {
		return false
	}
	s.scheduledTier = nil
	s.scheduledChangeDate = nil
	s.Touch()
	s.AddDomainEvent(NewScheduledChangeCancelled(s))
	return true
}

// RequestCancellation flags a paid subscription to lapse at period end.
// Entitlement is retained until then. Rejected while a downgrade is
// scheduled; the caller must cancel the scheduled change first.
func (s *Subscription) RequestCancellation() error {
	if !s.tier.IsPaid() {
		return ErrInvalidTransition
	}
	if s.scheduledTier != nil {
		return ErrInvalidTransition
	}
	if s.cancelAtPeriodEnd {
		return ErrNoOpChange
	}

	s.cancelAtPeriodEnd = true
	s.Touch()
	s.AddDomainEvent(NewCancellationRequested(s))
	return nil
}

// Reactivate clears a pending cancellation before the period end.
func (s *Subscription) Reactivate() error {
	if !s.cancelAtPeriodEnd {
		return ErrInvalidTransition
	}
	s.cancelAtPeriodEnd = false
	s.Touch()
	s.AddDomainEvent(NewSubscriptionReactivated(s))
	return nil
}

// CheckAndConsume spends one draft from the monthly quota. Callers must
// run ResetIfDue first so the counter is never checked against a stale
// period. Unlimited plans always pass without incrementing.
func (s *Subscription) CheckAndConsume() error {
	if s.IsUnlimited() {
		return nil
	}
	if s.usageCount >= s.monthlyLimit {
		return ErrQuotaExceeded
	}
	s.usageCount++
	s.Touch()
	return nil
}

// ResetIfDue rolls the billing period forward when now has reached the
// period end: the usage counter zeroes, a trial converts to active, and a
// pending cancellation or scheduled downgrade commits as part of the same
// roll. Reports whether anything changed.
func (s *Subscription) ResetIfDue(now time.Time) bool {
	if now.Before(s.periodEnd) {
		return false
	}

	if s.status == StatusTrialing {
		s.status = StatusActive
	}

	if s.cancelAtPeriodEnd {
		previous := s.tier
		s.cancelAtPeriodEnd = false
		s.revertToFree()
		s.AddDomainEvent(NewSubscriptionLapsed(s, previous))
	} else if s.scheduledTier != nil && !s.scheduledChangeDate.After(now) {
		previous := s.tier
		target := *s.scheduledTier
		s.scheduledTier = nil
		s.scheduledChangeDate = nil
		if target == TierFree {
			s.revertToFree()
		} else {
			s.tier = target
			s.monthlyLimit = PlanForTier(target).MonthlyDraftLimit
		}
		s.AddDomainEvent(NewScheduledChangeApplied(s, previous))
	}

	for !now.Before(s.periodEnd) {
		s.periodStart = s.periodEnd
		s.periodEnd = AdvancePeriod(s.quotaInterval(), s.periodEnd)
	}
	s.usageCount = 0
	s.Touch()
	s.AddDomainEvent(NewPeriodRolled(s))
	return true
}

func (s *Subscription) revertToFree() {
	s.tier = TierFree
	s.interval = IntervalMonthly
	s.monthlyLimit = PlanFree.MonthlyDraftLimit
	s.subscriptionRef = ""
}

// quotaInterval is the cadence the quota window rolls at. Free users have
// no billing interval; their window rolls monthly.
func (s *Subscription) quotaInterval() Interval {
	if s.tier == TierFree {
		return IntervalMonthly
	}
	return s.interval
}
