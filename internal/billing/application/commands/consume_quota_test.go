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

func TestConsumeQuotaHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, time.February, 15, 12, 0, 0, 0, time.UTC)

	t.Run("consumes one draft and persists", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		cache := new(mockSnapshotCache)
		handler := NewConsumeQuotaHandler(repo, outboxRepo, uow, cache)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")
		sub := freeSubscription(userID, now.AddDate(0, 0, -5))

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)
		repo.On("Update", txCtx, sub).Return(nil)
		cache.On("Invalidate", ctx, userID).Return(nil)

		result, err := handler.Handle(ctx, ConsumeQuotaCommand{UserID: userID, RequestedAt: now})

		require.NoError(t, err)
		assert.Equal(t, 1, result.UsageCount)
		assert.Equal(t, 10, result.MonthlyLimit)
		assert.Equal(t, 9, result.RemainingDrafts)
		assert.False(t, result.Unlimited)
		cache.AssertExpectations(t)
	})

	t.Run("quota exceeded without a due reset skips the write", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		cache := new(mockSnapshotCache)
		handler := NewConsumeQuotaHandler(repo, outboxRepo, uow, cache)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")
		sub := freeSubscription(userID, now.AddDate(0, 0, -5))
		for i := 0; i < 10; i++ {
			require.NoError(t, sub.CheckAndConsume())
		}

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)

		result, err := handler.Handle(ctx, ConsumeQuotaCommand{UserID: userID, RequestedAt: now})

		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
		assert.Nil(t, result)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("due reset persists even when consume is rejected", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		cache := new(mockSnapshotCache)
		handler := NewConsumeQuotaHandler(repo, outboxRepo, uow, cache)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		// Period ended two days ago with a scheduled downgrade pending; the
		// reset commits it, then the fresh counter admits the consume.
		scheduled := domain.TierFree
		boundary := now.AddDate(0, 0, -2)
		sub := domain.RehydrateSubscription(domain.SubscriptionState{
			ID:                  uuid.New(),
			UserID:              userID,
			Tier:                domain.TierProfessional,
			Interval:            domain.IntervalMonthly,
			Status:              domain.StatusActive,
			ScheduledTier:       &scheduled,
			ScheduledChangeDate: &boundary,
			PeriodStart:         boundary.AddDate(0, -1, 0),
			PeriodEnd:           boundary,
			UsageCount:          100,
			MonthlyLimit:        100,
			HasUsedTrial:        true,
			SubscriptionRef:     "sub_test",
			Version:             4,
			CreatedAt:           boundary.AddDate(0, -6, 0),
			UpdatedAt:           boundary,
		})

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)
		repo.On("Update", txCtx, sub).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
		cache.On("Invalidate", ctx, userID).Return(nil)

		result, err := handler.Handle(ctx, ConsumeQuotaCommand{UserID: userID, RequestedAt: now})

		require.NoError(t, err)
		assert.Equal(t, 1, result.UsageCount)
		assert.Equal(t, domain.PlanFree.MonthlyDraftLimit, result.MonthlyLimit)
		assert.Equal(t, domain.TierFree, sub.Tier())
	})

	t.Run("unlimited plan consumes without counting", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		cache := new(mockSnapshotCache)
		handler := NewConsumeQuotaHandler(repo, outboxRepo, uow, cache)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")
		sub := paidSubscription(userID, domain.TierPremium, domain.IntervalMonthly, now.AddDate(0, 0, -10), now.AddDate(0, 0, 20))

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByUserID", txCtx, userID).Return(sub, nil)
		repo.On("Update", txCtx, sub).Return(nil)
		cache.On("Invalidate", ctx, userID).Return(nil)

		result, err := handler.Handle(ctx, ConsumeQuotaCommand{UserID: userID, RequestedAt: now})

		require.NoError(t, err)
		assert.True(t, result.Unlimited)
		assert.Equal(t, 0, result.UsageCount)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})
}
