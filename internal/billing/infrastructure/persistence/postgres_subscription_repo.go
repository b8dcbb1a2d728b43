package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedPersistence "github.com/draftwise/draftwise/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSubscriptionRepository implements SubscriptionRepository with PostgreSQL.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

const subscriptionColumns = `
	id, user_id, tier, billing_interval, status, cancel_at_period_end,
	scheduled_tier, scheduled_change_date, period_start, period_end,
	usage_count, monthly_limit, has_used_trial,
	stripe_customer_id, stripe_subscription_id, version, created_at, updated_at
`

// Save inserts a new subscription. Each user holds at most one row.
func (r *PostgresSubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		sub.ID(),
		sub.UserID(),
		string(sub.Tier()),
		string(sub.Interval()),
		string(sub.Status()),
		sub.CancelAtPeriodEnd(),
		scheduledTierValue(sub.ScheduledTier()),
		sub.ScheduledChangeDate(),
		sub.PeriodStart(),
		sub.PeriodEnd(),
		sub.UsageCount(),
		sub.MonthlyLimit(),
		sub.HasUsedTrial(),
		sub.CustomerRef(),
		sub.SubscriptionRef(),
		sub.Version(),
		sub.CreatedAt(),
		sub.UpdatedAt(),
	)
	return err
}

// Update persists a modified subscription. The write is guarded by the
// version loaded at read time; a concurrent writer loses with ErrStaleState.
func (r *PostgresSubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	query := `
		UPDATE subscriptions SET
			tier = $1,
			billing_interval = $2,
			status = $3,
			cancel_at_period_end = $4,
			scheduled_tier = $5,
			scheduled_change_date = $6,
			period_start = $7,
			period_end = $8,
			usage_count = $9,
			monthly_limit = $10,
			has_used_trial = $11,
			stripe_customer_id = $12,
			stripe_subscription_id = $13,
			version = version + 1,
			updated_at = $14
		WHERE id = $15 AND version = $16
	`
	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx, query,
		string(sub.Tier()),
		string(sub.Interval()),
		string(sub.Status()),
		sub.CancelAtPeriodEnd(),
		scheduledTierValue(sub.ScheduledTier()),
		sub.ScheduledChangeDate(),
		sub.PeriodStart(),
		sub.PeriodEnd(),
		sub.UsageCount(),
		sub.MonthlyLimit(),
		sub.HasUsedTrial(),
		sub.CustomerRef(),
		sub.SubscriptionRef(),
		sub.UpdatedAt(),
		sub.ID(),
		sub.Version(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleState
	}
	sub.IncrementVersion()
	return nil
}

// FindByUserID returns the subscription for a user, or nil when absent.
func (r *PostgresSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	exec := sharedPersistence.Executor(ctx, r.pool)
	return r.scanOne(exec.QueryRow(ctx, query, userID))
}

// FindBySubscriptionRef returns the subscription holding a gateway reference.
func (r *PostgresSubscriptionRepository) FindBySubscriptionRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_subscription_id = $1`
	exec := sharedPersistence.Executor(ctx, r.pool)
	return r.scanOne(exec.QueryRow(ctx, query, ref))
}

// FindDue returns subscriptions whose period ended at or before the given time.
func (r *PostgresSubscriptionRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE period_end <= $1 AND status != $2
		ORDER BY period_end
		LIMIT $3
	`
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, before, string(domain.StatusExpired), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *PostgresSubscriptionRepository) scanOne(row pgx.Row) (*domain.Subscription, error) {
	sub, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func (r *PostgresSubscriptionRepository) scanRow(row pgx.Row) (*domain.Subscription, error) {
	var (
		state         domain.SubscriptionState
		tier          string
		interval      string
		status        string
		scheduledTier *string
	)
	err := row.Scan(
		&state.ID,
		&state.UserID,
		&tier,
		&interval,
		&status,
		&state.CancelAtPeriodEnd,
		&scheduledTier,
		&state.ScheduledChangeDate,
		&state.PeriodStart,
		&state.PeriodEnd,
		&state.UsageCount,
		&state.MonthlyLimit,
		&state.HasUsedTrial,
		&state.CustomerRef,
		&state.SubscriptionRef,
		&state.Version,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	state.Tier = domain.Tier(tier)
	state.Interval = domain.Interval(interval)
	state.Status = domain.Status(status)
	if scheduledTier != nil {
		t := domain.Tier(*scheduledTier)
		state.ScheduledTier = &t
	}
	return domain.RehydrateSubscription(state), nil
}

func scheduledTierValue(tier *domain.Tier) *string {
	if tier == nil {
		return nil
	}
	s := string(*tier)
	return &s
}
