// Package gateway provides payment gateway implementations. StripeGateway
// talks to the Stripe API; LocalGateway simulates one for local mode.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/invoice"
	"github.com/stripe/stripe-go/v82/subscription"
)

// StripeGateway implements PaymentGateway against the Stripe API. All calls
// run through a circuit breaker; an open circuit surfaces as
// ErrGatewayUnavailable without touching the network.
type StripeGateway struct {
	priceIDs map[string]string
	breaker  *gobreaker.CircuitBreaker[any]
	logger   *slog.Logger
}

// NewStripeGateway creates a gateway. priceIDs maps "tier:interval" keys to
// Stripe price object IDs configured in the dashboard.
func NewStripeGateway(apiKey string, priceIDs map[string]string, logger *slog.Logger) *StripeGateway {
	stripe.Key = apiKey
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"gateway", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &StripeGateway{
		priceIDs: priceIDs,
		breaker:  gobreaker.NewCircuitBreaker[any](settings),
		logger:   logger,
	}
}

func (g *StripeGateway) priceID(tier domain.Tier, interval domain.Interval) (string, error) {
	key := string(tier) + ":" + string(interval)
	id, ok := g.priceIDs[key]
	if !ok || id == "" {
		return "", fmt.Errorf("no stripe price configured for %s", key)
	}
	return id, nil
}

// execute runs a Stripe call through the circuit breaker and maps failures
// onto the domain error taxonomy.
func (g *StripeGateway) execute(operation string, fn func() (any, error)) (any, error) {
	result, err := g.breaker.Execute(fn)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: circuit open: %w", operation, domain.ErrGatewayUnavailable)
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard || stripeErr.DeclineCode != "" || stripeErr.Code == stripe.ErrorCodeCardDeclined {
			return nil, fmt.Errorf("%s: %s: %w", operation, stripeErr.Code, domain.ErrPaymentFailed)
		}
		if stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
	}
	return nil, fmt.Errorf("%s: %w", operation, domain.ErrGatewayUnavailable)
}

// CreateCustomer registers the user with Stripe and returns the customer ID.
func (g *StripeGateway) CreateCustomer(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"user_id": userID.String(),
		},
	}
	params.Context = ctx

	result, err := g.execute("create customer", func() (any, error) {
		return customer.New(params)
	})
	if err != nil {
		return "", err
	}
	return result.(*stripe.Customer).ID, nil
}

// CreateSubscription starts a subscription, optionally with a trial. Payment
// is collected up front; a declined card fails the call rather than leaving
// an incomplete subscription behind.
func (g *StripeGateway) CreateSubscription(ctx context.Context, p domain.CreateSubscriptionParams) (*domain.GatewaySubscription, error) {
	priceID, err := g.priceID(p.Tier, p.Interval)
	if err != nil {
		return nil, err
	}

	params := createSubscriptionParams(priceID, p)
	params.Context = ctx

	result, err := g.execute("create subscription", func() (any, error) {
		return subscription.New(params)
	})
	if err != nil {
		return nil, err
	}
	return mapSubscription(result.(*stripe.Subscription)), nil
}

// UpdateSubscription swaps the subscription onto a new price. Proration
// behavior is the caller's choice; an immediate change invoices the
// difference right away.
func (g *StripeGateway) UpdateSubscription(ctx context.Context, p domain.UpdateSubscriptionParams) (*domain.GatewaySubscription, error) {
	priceID, err := g.priceID(p.Tier, p.Interval)
	if err != nil {
		return nil, err
	}

	current, err := g.getSubscription(ctx, p.SubscriptionRef)
	if err != nil {
		return nil, err
	}
	if len(current.Items.Data) == 0 {
		return nil, fmt.Errorf("subscription %s has no items", p.SubscriptionRef)
	}

	params := updateSubscriptionParams(current.Items.Data[0].ID, priceID, p)
	params.Context = ctx

	result, err := g.execute("update subscription", func() (any, error) {
		return subscription.Update(p.SubscriptionRef, params)
	})
	if err != nil {
		return nil, err
	}
	return mapSubscription(result.(*stripe.Subscription)), nil
}

// CancelSubscription cancels either at period end or immediately.
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionRef string, atPeriodEnd bool) error {
	if atPeriodEnd {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		params.Context = ctx
		_, err := g.execute("cancel subscription", func() (any, error) {
			return subscription.Update(subscriptionRef, params)
		})
		return err
	}

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	_, err := g.execute("cancel subscription", func() (any, error) {
		return subscription.Cancel(subscriptionRef, params)
	})
	return err
}

// ResumeSubscription clears a pending cancel-at-period-end.
func (g *StripeGateway) ResumeSubscription(ctx context.Context, subscriptionRef string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	}
	params.Context = ctx
	_, err := g.execute("resume subscription", func() (any, error) {
		return subscription.Update(subscriptionRef, params)
	})
	return err
}

// PreviewProration asks Stripe what moving to the given plan would invoice
// right now, without changing anything.
func (g *StripeGateway) PreviewProration(ctx context.Context, subscriptionRef string, tier domain.Tier, interval domain.Interval) (int64, error) {
	priceID, err := g.priceID(tier, interval)
	if err != nil {
		return 0, err
	}

	current, err := g.getSubscription(ctx, subscriptionRef)
	if err != nil {
		return 0, err
	}
	if len(current.Items.Data) == 0 {
		return 0, fmt.Errorf("subscription %s has no items", subscriptionRef)
	}

	params := &stripe.InvoiceCreatePreviewParams{
		Customer:     stripe.String(current.Customer.ID),
		Subscription: stripe.String(subscriptionRef),
		SubscriptionDetails: &stripe.InvoiceCreatePreviewSubscriptionDetailsParams{
			Items: []*stripe.InvoiceCreatePreviewSubscriptionDetailsItemParams{
				{
					ID:    stripe.String(current.Items.Data[0].ID),
					Price: stripe.String(priceID),
				},
			},
			ProrationBehavior: stripe.String(string(domain.ProrationCharge)),
		},
	}
	params.Context = ctx

	result, err := g.execute("preview proration", func() (any, error) {
		return invoice.CreatePreview(params)
	})
	if err != nil {
		return 0, err
	}

	amount := result.(*stripe.Invoice).AmountDue
	if amount < 0 {
		amount = 0
	}
	return amount, nil
}

func createSubscriptionParams(priceID string, p domain.CreateSubscriptionParams) *stripe.SubscriptionParams {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(p.CustomerRef),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("error_if_incomplete"),
		Metadata: map[string]string{
			"user_id": p.UserID.String(),
		},
	}
	if p.TrialDays > 0 {
		params.TrialPeriodDays = stripe.Int64(int64(p.TrialDays))
	}
	if p.IdempotencyKey != uuid.Nil {
		params.SetIdempotencyKey(p.IdempotencyKey.String())
	}
	return params
}

func updateSubscriptionParams(itemID, priceID string, p domain.UpdateSubscriptionParams) *stripe.SubscriptionParams {
	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String(string(p.Proration)),
		PaymentBehavior:   stripe.String("error_if_incomplete"),
	}
	if p.IdempotencyKey != uuid.Nil {
		params.SetIdempotencyKey(p.IdempotencyKey.String())
	}
	return params
}

func (g *StripeGateway) getSubscription(ctx context.Context, ref string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	result, err := g.execute("get subscription", func() (any, error) {
		return subscription.Get(ref, params)
	})
	if err != nil {
		return nil, err
	}
	return result.(*stripe.Subscription), nil
}

func mapSubscription(sub *stripe.Subscription) *domain.GatewaySubscription {
	mapped := &domain.GatewaySubscription{
		SubscriptionRef: sub.ID,
	}
	if sub.Customer != nil {
		mapped.CustomerRef = sub.Customer.ID
	}
	// Billing period lives on the subscription item in current API versions.
	if len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		mapped.PeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		mapped.PeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	if sub.TrialEnd > 0 {
		trialEnd := time.Unix(sub.TrialEnd, 0).UTC()
		mapped.TrialEnd = &trialEnd
	}
	return mapped
}
