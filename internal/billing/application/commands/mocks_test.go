package commands

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ctxKey string

// mockSubscriptionRepo is a mock implementation of domain.SubscriptionRepository.
type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Save(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) Update(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) FindBySubscriptionRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) FindDue(ctx context.Context, before time.Time, limit int) ([]*domain.Subscription, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of application.UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockGateway is a mock implementation of domain.PaymentGateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCustomer(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	args := m.Called(ctx, userID, email)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) CreateSubscription(ctx context.Context, params domain.CreateSubscriptionParams) (*domain.GatewaySubscription, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewaySubscription), args.Error(1)
}

func (m *mockGateway) UpdateSubscription(ctx context.Context, params domain.UpdateSubscriptionParams) (*domain.GatewaySubscription, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewaySubscription), args.Error(1)
}

func (m *mockGateway) CancelSubscription(ctx context.Context, subscriptionRef string, atPeriodEnd bool) error {
	args := m.Called(ctx, subscriptionRef, atPeriodEnd)
	return args.Error(0)
}

func (m *mockGateway) ResumeSubscription(ctx context.Context, subscriptionRef string) error {
	args := m.Called(ctx, subscriptionRef)
	return args.Error(0)
}

func (m *mockGateway) PreviewProration(ctx context.Context, subscriptionRef string, tier domain.Tier, interval domain.Interval) (int64, error) {
	args := m.Called(ctx, subscriptionRef, tier, interval)
	return args.Get(0).(int64), args.Error(1)
}

// mockSnapshotCache is a mock implementation of domain.SnapshotCache.
type mockSnapshotCache struct {
	mock.Mock
}

func (m *mockSnapshotCache) Get(ctx context.Context, userID uuid.UUID) (*domain.Snapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *mockSnapshotCache) Set(ctx context.Context, snapshot domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *mockSnapshotCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func freeSubscription(userID uuid.UUID, now time.Time) *domain.Subscription {
	sub := domain.NewFreeSubscription(userID, now)
	sub.ClearDomainEvents()
	return sub
}

func paidSubscription(userID uuid.UUID, tier domain.Tier, interval domain.Interval, periodStart, periodEnd time.Time) *domain.Subscription {
	return domain.RehydrateSubscription(domain.SubscriptionState{
		ID:              uuid.New(),
		UserID:          userID,
		Tier:            tier,
		Interval:        interval,
		Status:          domain.StatusActive,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		MonthlyLimit:    domain.PlanForTier(tier).MonthlyDraftLimit,
		HasUsedTrial:    true,
		CustomerRef:     "cus_test",
		SubscriptionRef: "sub_test",
		Version:         1,
		CreatedAt:       periodStart,
		UpdatedAt:       periodStart,
	})
}
