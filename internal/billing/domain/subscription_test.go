package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func professionalMonthly(t *testing.T, now time.Time) *Subscription {
	t.Helper()
	sub := NewFreeSubscription(uuid.New(), now.AddDate(0, -1, 0))
	require.NoError(t, sub.StartTrial(TierProfessional, IntervalMonthly, now.AddDate(0, -1, 0), now.AddDate(0, -1, 14), "sub_test"))
	sub.ResetIfDue(now.AddDate(0, 0, -1))
	sub.ClearDomainEvents()
	require.Equal(t, TierProfessional, sub.Tier())
	require.Equal(t, StatusActive, sub.Status())
	return sub
}

func TestNewFreeSubscription(t *testing.T) {
	userID := uuid.New()
	now := date(2025, time.January, 10)

	sub := NewFreeSubscription(userID, now)

	assert.NotEqual(t, uuid.Nil, sub.ID())
	assert.Equal(t, userID, sub.UserID())
	assert.Equal(t, TierFree, sub.Tier())
	assert.Equal(t, StatusActive, sub.Status())
	assert.Equal(t, 10, sub.MonthlyLimit())
	assert.Equal(t, 0, sub.UsageCount())
	assert.False(t, sub.HasUsedTrial())
	assert.Equal(t, now, sub.PeriodStart())
	assert.Equal(t, date(2025, time.February, 10), sub.PeriodEnd())
	assert.Equal(t, PendingNone, sub.Pending().Kind)

	events := sub.DomainEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*SubscriptionCreated)
	require.True(t, ok)
	assert.Equal(t, userID, created.UserID)
}

func TestSubscription_StartTrial(t *testing.T) {
	now := date(2025, time.January, 10)
	trialEnd := now.AddDate(0, 0, 14)

	t.Run("free user without prior trial starts trialing", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), now)
		sub.ClearDomainEvents()

		err := sub.StartTrial(TierProfessional, IntervalMonthly, now, trialEnd, "sub_123")

		require.NoError(t, err)
		assert.Equal(t, StatusTrialing, sub.Status())
		assert.Equal(t, TierProfessional, sub.Tier())
		assert.True(t, sub.HasUsedTrial())
		assert.Equal(t, trialEnd, sub.PeriodEnd())
		assert.Equal(t, PlanProfessional.MonthlyDraftLimit, sub.MonthlyLimit())
		assert.Equal(t, "sub_123", sub.SubscriptionRef())

		events := sub.DomainEvents()
		require.Len(t, events, 1)
		started, ok := events[0].(*TrialStarted)
		require.True(t, ok)
		assert.Equal(t, trialEnd, started.TrialEnd)
	})

	t.Run("rejected when trial already used", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), now)
		require.NoError(t, sub.StartTrial(TierProfessional, IntervalMonthly, now, trialEnd, "sub_123"))
		sub.ResetIfDue(trialEnd)
		require.NoError(t, sub.RequestCancellation())
		sub.ResetIfDue(sub.PeriodEnd())
		require.Equal(t, TierFree, sub.Tier())

		err := sub.StartTrial(TierPremium, IntervalMonthly, now, trialEnd, "sub_456")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("rejected for paid tier holders", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		err := sub.StartTrial(TierPremium, IntervalMonthly, now, trialEnd, "sub_456")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSubscription_ActivatePaid(t *testing.T) {
	now := date(2025, time.January, 10)
	periodEnd := now.AddDate(0, 1, 0)

	sub := NewFreeSubscription(uuid.New(), now)
	sub.ClearDomainEvents()

	err := sub.ActivatePaid(TierPremium, IntervalAnnual, now, now.AddDate(1, 0, 0), "sub_789", 99000)

	require.NoError(t, err)
	assert.Equal(t, TierPremium, sub.Tier())
	assert.Equal(t, IntervalAnnual, sub.Interval())
	assert.Equal(t, StatusActive, sub.Status())
	assert.True(t, sub.IsUnlimited())

	events := sub.DomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*PlanChanged)
	require.True(t, ok)
	assert.Equal(t, int64(99000), changed.AmountChargedCents)
	assert.Equal(t, string(TierFree), changed.PreviousTier)

	err = sub.ActivatePaid(TierProfessional, IntervalMonthly, now, periodEnd, "sub_x", 2900)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubscription_ApplyImmediateChange(t *testing.T) {
	now := date(2025, time.February, 1)

	t.Run("upgrade keeps usage and refreshes period end", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		require.NoError(t, sub.CheckAndConsume())
		require.NoError(t, sub.CheckAndConsume())
		newEnd := date(2025, time.March, 5)

		err := sub.ApplyImmediateChange(TierPremium, IntervalMonthly, newEnd, 3500)

		require.NoError(t, err)
		assert.Equal(t, TierPremium, sub.Tier())
		assert.Equal(t, 2, sub.UsageCount())
		assert.Equal(t, newEnd, sub.PeriodEnd())
		assert.True(t, sub.IsUnlimited())
	})

	t.Run("interval switch on same tier is allowed", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		err := sub.ApplyImmediateChange(TierProfessional, IntervalAnnual, now.AddDate(1, 0, 0), 14500)
		require.NoError(t, err)
		assert.Equal(t, IntervalAnnual, sub.Interval())
	})

	t.Run("downgrade is rejected", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), now)
		require.NoError(t, sub.ActivatePaid(TierPremium, IntervalMonthly, now, now.AddDate(0, 1, 0), "sub_p", 9900))
		err := sub.ApplyImmediateChange(TierProfessional, IntervalMonthly, now.AddDate(0, 1, 0), 0)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("no-op change is rejected", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		err := sub.ApplyImmediateChange(TierProfessional, IntervalMonthly, now.AddDate(0, 1, 0), 0)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSubscription_ScheduleDowngrade(t *testing.T) {
	now := date(2025, time.February, 15)

	t.Run("defers to period end without touching current tier", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		periodEnd := sub.PeriodEnd()

		err := sub.ScheduleDowngrade(TierFree)

		require.NoError(t, err)
		assert.Equal(t, TierProfessional, sub.Tier())
		require.NotNil(t, sub.ScheduledTier())
		assert.Equal(t, TierFree, *sub.ScheduledTier())
		require.NotNil(t, sub.ScheduledChangeDate())
		assert.Equal(t, periodEnd, *sub.ScheduledChangeDate())
		assert.Equal(t, PlanProfessional.MonthlyDraftLimit, sub.MonthlyLimit())

		pending := sub.Pending()
		assert.Equal(t, PendingDowngrade, pending.Kind)
		assert.Equal(t, TierFree, pending.Tier)
		assert.Equal(t, periodEnd, pending.EffectiveAt)
	})

	t.Run("rejected while cancellation pending", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		require.NoError(t, sub.RequestCancellation())

		err := sub.ScheduleDowngrade(TierFree)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("rejected for non-downgrades", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		err := sub.ScheduleDowngrade(TierPremium)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSubscription_CancelScheduledChange(t *testing.T) {
	now := date(2025, time.February, 15)
	sub := professionalMonthly(t, now)
	require.NoError(t, sub.ScheduleDowngrade(TierFree))

	assert.True(t, sub.CancelScheduledChange())
	assert.Nil(t, sub.ScheduledTier())
	assert.Nil(t, sub.ScheduledChangeDate())

	// Second call is a no-op with the same resulting state.
	assert.False(t, sub.CancelScheduledChange())
	assert.Nil(t, sub.ScheduledTier())
	assert.Equal(t, PendingNone, sub.Pending().Kind)
}

func TestSubscription_RequestCancellation(t *testing.T) {
	now := date(2025, time.February, 15)

	t.Run("flags lapse at period end, entitlement retained", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		periodEnd := sub.PeriodEnd()

		err := sub.RequestCancellation()

		require.NoError(t, err)
		assert.True(t, sub.CancelAtPeriodEnd())
		assert.Equal(t, TierProfessional, sub.Tier())
		assert.Equal(t, StatusActive, sub.Status())

		pending := sub.Pending()
		assert.Equal(t, PendingCancellation, pending.Kind)
		assert.Equal(t, periodEnd, pending.EffectiveAt)
	})

	t.Run("rejected on free tier", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), now)
		assert.ErrorIs(t, sub.RequestCancellation(), ErrInvalidTransition)
	})

	t.Run("rejected while downgrade scheduled", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		require.NoError(t, sub.ScheduleDowngrade(TierFree))
		assert.ErrorIs(t, sub.RequestCancellation(), ErrInvalidTransition)
	})

	t.Run("repeated cancel is a no-op", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		require.NoError(t, sub.RequestCancellation())
		assert.ErrorIs(t, sub.RequestCancellation(), ErrNoOpChange)
	})
}

func TestSubscription_Reactivate(t *testing.T) {
	now := date(2025, time.February, 15)
	sub := professionalMonthly(t, now)
	require.NoError(t, sub.RequestCancellation())

	require.NoError(t, sub.Reactivate())
	assert.False(t, sub.CancelAtPeriodEnd())
	assert.Equal(t, PendingNone, sub.Pending().Kind)

	assert.ErrorIs(t, sub.Reactivate(), ErrInvalidTransition)
}

func TestSubscription_CheckAndConsume(t *testing.T) {
	now := date(2025, time.January, 10)

	t.Run("quota boundary at the limit", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), now)
		require.Equal(t, 10, sub.MonthlyLimit())

		for i := 0; i < 9; i++ {
			require.NoError(t, sub.CheckAndConsume())
		}
		require.Equal(t, 9, sub.UsageCount())

		require.NoError(t, sub.CheckAndConsume())
		assert.Equal(t, 10, sub.UsageCount())

		err := sub.CheckAndConsume()
		assert.ErrorIs(t, err, ErrQuotaExceeded)
		assert.Equal(t, 10, sub.UsageCount())
		assert.Equal(t, 0, sub.RemainingDrafts())
	})

	t.Run("unlimited plan never increments", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), now)
		require.NoError(t, sub.ActivatePaid(TierPremium, IntervalMonthly, now, now.AddDate(0, 1, 0), "sub_p", 9900))

		for i := 0; i < 50; i++ {
			require.NoError(t, sub.CheckAndConsume())
		}
		assert.Equal(t, 0, sub.UsageCount())
		assert.Equal(t, UnlimitedDrafts, sub.RemainingDrafts())
	})
}

func TestSubscription_ResetIfDue(t *testing.T) {
	t.Run("no-op before period end", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), date(2025, time.January, 10))
		require.NoError(t, sub.CheckAndConsume())

		changed := sub.ResetIfDue(date(2025, time.February, 9))

		assert.False(t, changed)
		assert.Equal(t, 1, sub.UsageCount())
	})

	t.Run("rolls period and zeroes usage", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), date(2025, time.January, 10))
		require.NoError(t, sub.CheckAndConsume())
		sub.ClearDomainEvents()

		changed := sub.ResetIfDue(date(2025, time.February, 10))

		assert.True(t, changed)
		assert.Equal(t, 0, sub.UsageCount())
		assert.Equal(t, date(2025, time.February, 10), sub.PeriodStart())
		assert.Equal(t, date(2025, time.March, 10), sub.PeriodEnd())

		events := sub.DomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*PeriodRolled)
		assert.True(t, ok)
	})

	t.Run("catches up across multiple missed periods", func(t *testing.T) {
		sub := NewFreeSubscription(uuid.New(), date(2025, time.January, 10))

		changed := sub.ResetIfDue(date(2025, time.April, 15))

		assert.True(t, changed)
		assert.Equal(t, date(2025, time.April, 10), sub.PeriodStart())
		assert.Equal(t, date(2025, time.May, 10), sub.PeriodEnd())
	})

	t.Run("scheduled downgrade commits at the boundary", func(t *testing.T) {
		sub := professionalMonthly(t, date(2025, time.February, 1))
		require.NoError(t, sub.ScheduleDowngrade(TierFree))
		boundary := sub.PeriodEnd()
		sub.ClearDomainEvents()

		changed := sub.ResetIfDue(boundary.AddDate(0, 0, 1))

		assert.True(t, changed)
		assert.Equal(t, TierFree, sub.Tier())
		assert.Equal(t, PlanFree.MonthlyDraftLimit, sub.MonthlyLimit())
		assert.Nil(t, sub.ScheduledTier())
		assert.Nil(t, sub.ScheduledChangeDate())
		assert.Empty(t, sub.SubscriptionRef())

		events := sub.DomainEvents()
		require.Len(t, events, 2)
		applied, ok := events[0].(*ScheduledChangeApplied)
		require.True(t, ok)
		assert.Equal(t, string(TierProfessional), applied.PreviousTier)
		assert.Equal(t, string(TierFree), applied.Tier)
	})

	t.Run("pending cancellation lapses to free", func(t *testing.T) {
		sub := professionalMonthly(t, date(2025, time.February, 1))
		require.NoError(t, sub.RequestCancellation())
		boundary := sub.PeriodEnd()
		sub.ClearDomainEvents()

		changed := sub.ResetIfDue(boundary)

		assert.True(t, changed)
		assert.Equal(t, TierFree, sub.Tier())
		assert.False(t, sub.CancelAtPeriodEnd())
		assert.Equal(t, StatusActive, sub.Status())
		assert.Equal(t, PlanFree.MonthlyDraftLimit, sub.MonthlyLimit())

		events := sub.DomainEvents()
		require.Len(t, events, 2)
		lapsed, ok := events[0].(*SubscriptionLapsed)
		require.True(t, ok)
		assert.Equal(t, string(TierProfessional), lapsed.PreviousTier)
	})

	t.Run("trial converts to active at the boundary", func(t *testing.T) {
		now := date(2025, time.January, 10)
		sub := NewFreeSubscription(uuid.New(), now)
		require.NoError(t, sub.StartTrial(TierProfessional, IntervalMonthly, now, now.AddDate(0, 0, 14), "sub_t"))

		changed := sub.ResetIfDue(now.AddDate(0, 0, 14))

		assert.True(t, changed)
		assert.Equal(t, StatusActive, sub.Status())
		assert.Equal(t, TierProfessional, sub.Tier())
	})
}

func TestSubscription_DowngradeScenario(t *testing.T) {
	// Active(professional, monthly) with periodEnd 2025-03-01 requests a
	// downgrade to free on 2025-02-15; the tier holds until a reset on
	// 2025-03-02 commits free.
	sub := RehydrateSubscription(SubscriptionState{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Tier:            TierProfessional,
		Interval:        IntervalMonthly,
		Status:          StatusActive,
		PeriodStart:     date(2025, time.February, 1),
		PeriodEnd:       date(2025, time.March, 1),
		MonthlyLimit:    PlanProfessional.MonthlyDraftLimit,
		HasUsedTrial:    true,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
		Version:         3,
		CreatedAt:       date(2025, time.January, 1),
		UpdatedAt:       date(2025, time.February, 1),
	})

	require.NoError(t, sub.ScheduleDowngrade(TierFree))
	assert.Equal(t, TierProfessional, sub.Tier())
	assert.Equal(t, TierFree, *sub.ScheduledTier())
	assert.Equal(t, date(2025, time.March, 1), *sub.ScheduledChangeDate())

	changed := sub.ResetIfDue(date(2025, time.March, 2))

	assert.True(t, changed)
	assert.Equal(t, TierFree, sub.Tier())
	assert.Nil(t, sub.ScheduledTier())
}

func TestSubscription_RehydrateRoundTrip(t *testing.T) {
	scheduled := TierFree
	changeDate := date(2025, time.March, 1)
	state := SubscriptionState{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		Tier:                TierProfessional,
		Interval:            IntervalAnnual,
		Status:              StatusActive,
		ScheduledTier:       &scheduled,
		ScheduledChangeDate: &changeDate,
		PeriodStart:         date(2025, time.January, 1),
		PeriodEnd:           date(2026, time.January, 1),
		UsageCount:          42,
		MonthlyLimit:        100,
		HasUsedTrial:        true,
		CustomerRef:         "cus_9",
		SubscriptionRef:     "sub_9",
		Version:             7,
		CreatedAt:           date(2024, time.June, 1),
		UpdatedAt:           date(2025, time.January, 1),
	}

	sub := RehydrateSubscription(state)

	assert.Equal(t, state.ID, sub.ID())
	assert.Equal(t, state.UserID, sub.UserID())
	assert.Equal(t, 42, sub.UsageCount())
	assert.Equal(t, 7, sub.Version())
	assert.Equal(t, 58, sub.RemainingDrafts())
	assert.Equal(t, PendingDowngrade, sub.Pending().Kind)
	assert.Empty(t, sub.DomainEvents())
}

func TestSubscription_ErrorsAreDistinguishable(t *testing.T) {
	assert.False(t, errors.Is(ErrQuotaExceeded, ErrInvalidTransition))
	assert.False(t, errors.Is(ErrStaleState, ErrGatewayUnavailable))
	assert.False(t, errors.Is(ErrPaymentFailed, ErrGatewayUnavailable))
}

func TestSubscription_SetPeriodEnd(t *testing.T) {
	now := date(2025, time.January, 15)

	t.Run("forward move is applied", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		forward := sub.PeriodEnd().AddDate(0, 0, 3)

		sub.SetPeriodEnd(forward)
		assert.Equal(t, forward, sub.PeriodEnd())
	})

	t.Run("backward move is ignored", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		require.NoError(t, sub.CheckAndConsume())
		before := sub.PeriodEnd()

		sub.SetPeriodEnd(date(2025, time.January, 10))
		assert.Equal(t, before, sub.PeriodEnd())

		// An early boundary would have let the next reset fire mid-period.
		sub.ResetIfDue(now.AddDate(0, 0, 1))
		assert.Equal(t, 1, sub.UsageCount())
	})

	t.Run("replay of the current boundary is a no-op", func(t *testing.T) {
		sub := professionalMonthly(t, now)
		before := sub.PeriodEnd()

		sub.SetPeriodEnd(before)
		assert.Equal(t, before, sub.PeriodEnd())
	})
}
