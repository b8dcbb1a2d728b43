package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
)

type localSubscription struct {
	customerRef       string
	tier              domain.Tier
	interval          domain.Interval
	periodStart       time.Time
	periodEnd         time.Time
	trialEnd          *time.Time
	cancelAtPeriodEnd bool
}

// LocalGateway simulates a payment gateway in memory for local mode. Every
// charge succeeds and billing periods are computed locally.
type LocalGateway struct {
	mu         sync.Mutex
	subs       map[string]*localSubscription
	calculator *domain.ProrationCalculator
	now        func() time.Time
}

// NewLocalGateway creates a gateway backed by process memory.
func NewLocalGateway(calculator *domain.ProrationCalculator) *LocalGateway {
	return &LocalGateway{
		subs:       make(map[string]*localSubscription),
		calculator: calculator,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the gateway clock, for tests.
func (g *LocalGateway) SetClock(now func() time.Time) {
	g.now = now
}

// CreateCustomer returns a synthetic customer reference.
func (g *LocalGateway) CreateCustomer(_ context.Context, userID uuid.UUID, _ string) (string, error) {
	return "cus_local_" + userID.String(), nil
}

// CreateSubscription starts a subscription with a locally computed period.
func (g *LocalGateway) CreateSubscription(_ context.Context, p domain.CreateSubscriptionParams) (*domain.GatewaySubscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	sub := &localSubscription{
		customerRef: p.CustomerRef,
		tier:        p.Tier,
		interval:    p.Interval,
		periodStart: now,
		periodEnd:   domain.AdvancePeriod(p.Interval, now),
	}
	if p.TrialDays > 0 {
		trialEnd := now.AddDate(0, 0, p.TrialDays)
		sub.trialEnd = &trialEnd
		sub.periodEnd = trialEnd
	}

	ref := "sub_local_" + uuid.NewString()
	g.subs[ref] = sub

	return &domain.GatewaySubscription{
		CustomerRef:     sub.customerRef,
		SubscriptionRef: ref,
		PeriodStart:     sub.periodStart,
		PeriodEnd:       sub.periodEnd,
		TrialEnd:        sub.trialEnd,
	}, nil
}

// UpdateSubscription swaps the plan, keeping the current billing period.
func (g *LocalGateway) UpdateSubscription(_ context.Context, p domain.UpdateSubscriptionParams) (*domain.GatewaySubscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sub, ok := g.subs[p.SubscriptionRef]
	if !ok {
		return nil, fmt.Errorf("unknown subscription %s", p.SubscriptionRef)
	}
	sub.tier = p.Tier
	sub.interval = p.Interval
	sub.cancelAtPeriodEnd = false

	return &domain.GatewaySubscription{
		CustomerRef:     sub.customerRef,
		SubscriptionRef: p.SubscriptionRef,
		PeriodStart:     sub.periodStart,
		PeriodEnd:       sub.periodEnd,
		TrialEnd:        sub.trialEnd,
	}, nil
}

// CancelSubscription cancels immediately or flags a cancel at period end.
func (g *LocalGateway) CancelSubscription(_ context.Context, subscriptionRef string, atPeriodEnd bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	sub, ok := g.subs[subscriptionRef]
	if !ok {
		return fmt.Errorf("unknown subscription %s", subscriptionRef)
	}
	if !atPeriodEnd {
		delete(g.subs, subscriptionRef)
		return nil
	}
	sub.cancelAtPeriodEnd = true
	return nil
}

// ResumeSubscription clears a pending cancel at period end.
func (g *LocalGateway) ResumeSubscription(_ context.Context, subscriptionRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	sub, ok := g.subs[subscriptionRef]
	if !ok {
		return fmt.Errorf("unknown subscription %s", subscriptionRef)
	}
	sub.cancelAtPeriodEnd = false
	return nil
}

// PreviewProration quotes a plan change against the stored billing period.
func (g *LocalGateway) PreviewProration(_ context.Context, subscriptionRef string, tier domain.Tier, interval domain.Interval) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sub, ok := g.subs[subscriptionRef]
	if !ok {
		return 0, fmt.Errorf("unknown subscription %s", subscriptionRef)
	}
	quote := g.calculator.Quote(sub.tier, sub.interval, tier, interval, sub.periodStart, sub.periodEnd, g.now())
	return quote.AmountDueNowCents, nil
}
