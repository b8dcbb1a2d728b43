package gateway

import (
	"testing"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

func TestCreateSubscriptionParams(t *testing.T) {
	requestID := uuid.New()
	userID := uuid.New()

	t.Run("maps the request id onto the idempotency key", func(t *testing.T) {
		params := createSubscriptionParams("price_pro_m", domain.CreateSubscriptionParams{
			IdempotencyKey: requestID,
			CustomerRef:    "cus_1",
			UserID:         userID,
			Tier:           domain.TierProfessional,
			Interval:       domain.IntervalMonthly,
			TrialDays:      14,
		})

		require.NotNil(t, params.GetParams().IdempotencyKey)
		assert.Equal(t, requestID.String(), *params.GetParams().IdempotencyKey)
		assert.Equal(t, "cus_1", *params.Customer)
		assert.Equal(t, "price_pro_m", *params.Items[0].Price)
		assert.Equal(t, "error_if_incomplete", *params.PaymentBehavior)
		assert.Equal(t, int64(14), *params.TrialPeriodDays)
		assert.Equal(t, userID.String(), params.Metadata["user_id"])
	})

	t.Run("omits trial and idempotency key when unset", func(t *testing.T) {
		params := createSubscriptionParams("price_pro_m", domain.CreateSubscriptionParams{
			CustomerRef: "cus_1",
			UserID:      userID,
			Tier:        domain.TierProfessional,
			Interval:    domain.IntervalMonthly,
		})

		assert.Nil(t, params.GetParams().IdempotencyKey)
		assert.Nil(t, params.TrialPeriodDays)
	})
}

func TestUpdateSubscriptionParams(t *testing.T) {
	requestID := uuid.New()

	params := updateSubscriptionParams("si_1", "price_prem_m", domain.UpdateSubscriptionParams{
		IdempotencyKey:  requestID,
		SubscriptionRef: "sub_1",
		Tier:            domain.TierPremium,
		Interval:        domain.IntervalMonthly,
		Proration:       domain.ProrationCharge,
	})

	require.NotNil(t, params.GetParams().IdempotencyKey)
	assert.Equal(t, requestID.String(), *params.GetParams().IdempotencyKey)
	assert.Equal(t, "si_1", *params.Items[0].ID)
	assert.Equal(t, "price_prem_m", *params.Items[0].Price)
	assert.Equal(t, string(domain.ProrationCharge), *params.ProrationBehavior)
	assert.Equal(t, "error_if_incomplete", *params.PaymentBehavior)
}

func TestMapSubscription(t *testing.T) {
	periodStart := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	trialEnd := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)

	sub := &stripe.Subscription{
		ID:       "sub_1",
		Customer: &stripe.Customer{ID: "cus_1"},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					ID:                 "si_1",
					CurrentPeriodStart: periodStart.Unix(),
					CurrentPeriodEnd:   periodEnd.Unix(),
				},
			},
		},
		TrialEnd: trialEnd.Unix(),
	}

	mapped := mapSubscription(sub)
	assert.Equal(t, "sub_1", mapped.SubscriptionRef)
	assert.Equal(t, "cus_1", mapped.CustomerRef)
	assert.Equal(t, periodStart, mapped.PeriodStart)
	assert.Equal(t, periodEnd, mapped.PeriodEnd)
	require.NotNil(t, mapped.TrialEnd)
	assert.Equal(t, trialEnd, *mapped.TrialEnd)
}
