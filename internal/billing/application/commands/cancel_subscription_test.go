package commands

import (
	"context"
	"testing"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCancelFixture() (*mockSubscriptionRepo, *mockOutboxRepo, *mockUnitOfWork, *mockGateway, *mockSnapshotCache, *CancelSubscriptionHandler) {
	repo := new(mockSubscriptionRepo)
	outboxRepo := new(mockOutboxRepo)
	uow := new(mockUnitOfWork)
	gateway := new(mockGateway)
	cache := new(mockSnapshotCache)
	handler := NewCancelSubscriptionHandler(repo, outboxRepo, uow, gateway, cache)
	return repo, outboxRepo, uow, gateway, cache, handler
}

func TestCancelSubscriptionHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)
	periodStart := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("flags cancellation and keeps entitlement", func(t *testing.T) {
		repo, outboxRepo, uow, gateway, cache, handler := newCancelFixture()
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		sub := paidSubscription(userID, domain.TierProfessional, domain.IntervalMonthly, periodStart, periodEnd)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)
		gateway.On("CancelSubscription", txCtx, "sub_test", true).Return(nil)
		repo.On("Update", txCtx, sub).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
		cache.On("Invalidate", ctx, userID).Return(nil)

		snapshot, err := handler.Handle(ctx, CancelSubscriptionCommand{UserID: userID, RequestedAt: now})

		require.NoError(t, err)
		assert.True(t, snapshot.CancelAtPeriodEnd)
		assert.Equal(t, domain.TierProfessional, snapshot.Tier)
		assert.Equal(t, periodEnd, snapshot.PeriodEnd)
		gateway.AssertExpectations(t)
	})

	t.Run("free tier cannot cancel", func(t *testing.T) {
		repo, _, uow, gateway, _, handler := newCancelFixture()
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		sub := freeSubscription(userID, now.AddDate(0, 0, -5))

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)

		_, err := handler.Handle(ctx, CancelSubscriptionCommand{UserID: userID, RequestedAt: now})

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		gateway.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected while downgrade is scheduled", func(t *testing.T) {
		repo, _, uow, _, _, handler := newCancelFixture()
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		sub := paidSubscription(userID, domain.TierPremium, domain.IntervalMonthly, periodStart, periodEnd)
		require.NoError(t, sub.ScheduleDowngrade(domain.TierProfessional))
		sub.ClearDomainEvents()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)

		_, err := handler.Handle(ctx, CancelSubscriptionCommand{UserID: userID, RequestedAt: now})

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("second cancel is a no-op", func(t *testing.T) {
		repo, _, uow, _, _, handler := newCancelFixture()
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		sub := paidSubscription(userID, domain.TierProfessional, domain.IntervalMonthly, periodStart, periodEnd)
		require.NoError(t, sub.RequestCancellation())
		sub.ClearDomainEvents()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)

		_, err := handler.Handle(ctx, CancelSubscriptionCommand{UserID: userID, RequestedAt: now})

		assert.ErrorIs(t, err, domain.ErrNoOpChange)
	})

	t.Run("gateway outage aborts the cancellation", func(t *testing.T) {
		repo, _, uow, gateway, _, handler := newCancelFixture()
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		sub := paidSubscription(userID, domain.TierProfessional, domain.IntervalMonthly, periodStart, periodEnd)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)
		gateway.On("CancelSubscription", txCtx, "sub_test", true).Return(domain.ErrGatewayUnavailable)

		_, err := handler.Handle(ctx, CancelSubscriptionCommand{UserID: userID, RequestedAt: now})

		assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
		assert.False(t, sub.CancelAtPeriodEnd())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
