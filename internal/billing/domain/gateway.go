package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProrationBehavior tells the gateway how to bill an immediate plan change.
type ProrationBehavior string

const (
	// ProrationCharge invoices the prorated difference immediately.
	ProrationCharge ProrationBehavior = "always_invoice"
	// ProrationNone changes the price without any mid-period charge. Used
	// when reverting a queued change.
	ProrationNone ProrationBehavior = "none"
)

// GatewaySubscription is the gateway's view of a subscription after a
// mutating call. PeriodEnd is authoritative: local state is refreshed from
// it and never computed locally after a gateway call.
type GatewaySubscription struct {
	CustomerRef     string
	SubscriptionRef string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	TrialEnd        *time.Time
}

// CreateSubscriptionParams starts a paid subscription at the gateway. The
// idempotency key is the plan-change request id, so a timed-out call can
// be retried without double charging.
type CreateSubscriptionParams struct {
	IdempotencyKey uuid.UUID
	CustomerRef    string
	Email          string
	UserID         uuid.UUID
	Tier           Tier
	Interval       Interval
	TrialDays      int
}

// UpdateSubscriptionParams moves an existing gateway subscription to a new
// price.
type UpdateSubscriptionParams struct {
	IdempotencyKey  uuid.UUID
	SubscriptionRef string
	Tier            Tier
	Interval        Interval
	Proration       ProrationBehavior
}

// PaymentGateway is the only port that talks to the payment processor. It
// owns charge execution and is the system of record for billing dates.
// Implementations translate processor failures into ErrPaymentFailed or
// ErrGatewayUnavailable.
type PaymentGateway interface {
	// CreateCustomer registers the user with the processor and returns the
	// customer handle.
	CreateCustomer(ctx context.Context, userID uuid.UUID, email string) (string, error)

	// CreateSubscription starts a paid subscription, optionally with a
	// trial period during which nothing is charged.
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*GatewaySubscription, error)

	// UpdateSubscription switches the subscription to a new price, either
	// charging the prorated difference now or deferring per Proration.
	UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (*GatewaySubscription, error)

	// CancelSubscription ends the subscription, at the period boundary
	// when atPeriodEnd is true, immediately otherwise.
	CancelSubscription(ctx context.Context, subscriptionRef string, atPeriodEnd bool) error

	// ResumeSubscription withdraws a pending at-period-end cancellation.
	ResumeSubscription(ctx context.Context, subscriptionRef string) error

	// PreviewProration asks the gateway what an immediate switch to the
	// given price would cost right now, in cents.
	PreviewProration(ctx context.Context, subscriptionRef string, tier Tier, interval Interval) (int64, error)
}
