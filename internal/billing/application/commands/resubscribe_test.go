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

func TestResubscribeHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)
	periodStart := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("clears a pending cancellation", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		gateway := new(mockGateway)
		cache := new(mockSnapshotCache)
		handler := NewResubscribeHandler(repo, outboxRepo, uow, gateway, cache)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		sub := paidSubscription(userID, domain.TierProfessional, domain.IntervalMonthly, periodStart, periodEnd)
		require.NoError(t, sub.RequestCancellation())
		sub.ClearDomainEvents()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)
		gateway.On("ResumeSubscription", txCtx, "sub_test").Return(nil)
		repo.On("Update", txCtx, sub).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
		cache.On("Invalidate", ctx, userID).Return(nil)

		snapshot, err := handler.Handle(ctx, ResubscribeCommand{UserID: userID, RequestedAt: now})

		require.NoError(t, err)
		assert.False(t, snapshot.CancelAtPeriodEnd)
		assert.Equal(t, domain.TierProfessional, snapshot.Tier)
		gateway.AssertExpectations(t)
	})

	t.Run("nothing pending is rejected", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		gateway := new(mockGateway)
		cache := new(mockSnapshotCache)
		handler := NewResubscribeHandler(repo, outboxRepo, uow, gateway, cache)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		sub := paidSubscription(userID, domain.TierProfessional, domain.IntervalMonthly, periodStart, periodEnd)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)

		_, err := handler.Handle(ctx, ResubscribeCommand{UserID: userID, RequestedAt: now})

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		gateway.AssertNotCalled(t, "ResumeSubscription", mock.Anything, mock.Anything)
	})

	t.Run("cancellation already lapsed needs a new plan change", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		gateway := new(mockGateway)
		cache := new(mockSnapshotCache)
		handler := NewResubscribeHandler(repo, outboxRepo, uow, gateway, cache)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		// Period ended yesterday; the reset inside the handler lapses the
		// subscription to free, so there is no cancellation left to clear.
		sub := paidSubscription(userID, domain.TierProfessional, domain.IntervalMonthly, periodStart.AddDate(0, -1, 0), now.AddDate(0, 0, -1))
		require.NoError(t, sub.RequestCancellation())
		sub.ClearDomainEvents()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)

		_, err := handler.Handle(ctx, ResubscribeCommand{UserID: userID, RequestedAt: now})

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.TierFree, sub.Tier())
	})
}
