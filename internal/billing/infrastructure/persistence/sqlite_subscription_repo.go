package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedPersistence "github.com/draftwise/draftwise/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteSubscriptionRepository implements SubscriptionRepository with SQLite
// for local mode. Times are stored as RFC3339 strings.
type SQLiteSubscriptionRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new repository.
func NewSQLiteSubscriptionRepository(dbConn *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{dbConn: dbConn}
}

func (r *SQLiteSubscriptionRepository) exec(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteExec(ctx, r.dbConn)
}

// Save inserts a new subscription. Each user holds at most one row.
func (r *SQLiteSubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, tier, billing_interval, status, cancel_at_period_end,
			scheduled_tier, scheduled_change_date, period_start, period_end,
			usage_count, monthly_limit, has_used_trial,
			stripe_customer_id, stripe_subscription_id, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx).ExecContext(ctx, query,
		sub.ID().String(),
		sub.UserID().String(),
		string(sub.Tier()),
		string(sub.Interval()),
		string(sub.Status()),
		boolToInt(sub.CancelAtPeriodEnd()),
		nullableTier(sub.ScheduledTier()),
		nullableTime(sub.ScheduledChangeDate()),
		sub.PeriodStart().Format(time.RFC3339),
		sub.PeriodEnd().Format(time.RFC3339),
		sub.UsageCount(),
		sub.MonthlyLimit(),
		boolToInt(sub.HasUsedTrial()),
		sub.CustomerRef(),
		sub.SubscriptionRef(),
		sub.Version(),
		sub.CreatedAt().Format(time.RFC3339),
		sub.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// Update persists a modified subscription under the version guard. A write
// that matches no row at the loaded version returns ErrStaleState.
func (r *SQLiteSubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	query := `
		UPDATE subscriptions SET
			tier = ?,
			billing_interval = ?,
			status = ?,
			cancel_at_period_end = ?,
			scheduled_tier = ?,
			scheduled_change_date = ?,
			period_start = ?,
			period_end = ?,
			usage_count = ?,
			monthly_limit = ?,
			has_used_trial = ?,
			stripe_customer_id = ?,
			stripe_subscription_id = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.exec(ctx).ExecContext(ctx, query,
		string(sub.Tier()),
		string(sub.Interval()),
		string(sub.Status()),
		boolToInt(sub.CancelAtPeriodEnd()),
		nullableTier(sub.ScheduledTier()),
		nullableTime(sub.ScheduledChangeDate()),
		sub.PeriodStart().Format(time.RFC3339),
		sub.PeriodEnd().Format(time.RFC3339),
		sub.UsageCount(),
		sub.MonthlyLimit(),
		boolToInt(sub.HasUsedTrial()),
		sub.CustomerRef(),
		sub.SubscriptionRef(),
		sub.UpdatedAt().Format(time.RFC3339),
		sub.ID().String(),
		sub.Version(),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrStaleState
	}
	sub.IncrementVersion()
	return nil
}

// FindByUserID returns the subscription for a user, or nil when absent.
func (r *SQLiteSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := selectSubscription + ` WHERE user_id = ?`
	return r.scanOne(r.exec(ctx).QueryRowContext(ctx, query, userID.String()))
}

// FindBySubscriptionRef returns the subscription holding a gateway reference.
func (r *SQLiteSubscriptionRepository) FindBySubscriptionRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	query := selectSubscription + ` WHERE stripe_subscription_id = ?`
	return r.scanOne(r.exec(ctx).QueryRowContext(ctx, query, ref))
}

// FindDue returns subscriptions whose period ended at or before the given time.
func (r *SQLiteSubscriptionRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*domain.Subscription, error) {
	query := selectSubscription + ` WHERE period_end <= ? AND status != ? ORDER BY period_end LIMIT ?`
	rows, err := r.exec(ctx).QueryContext(ctx, query, before.Format(time.RFC3339), string(domain.StatusExpired), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

const selectSubscription = `
	SELECT id, user_id, tier, billing_interval, status, cancel_at_period_end,
	       scheduled_tier, scheduled_change_date, period_start, period_end,
	       usage_count, monthly_limit, has_used_trial,
	       stripe_customer_id, stripe_subscription_id, version, created_at, updated_at
	FROM subscriptions
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteSubscriptionRepository) scanOne(row *sql.Row) (*domain.Subscription, error) {
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		id, userID, tier, interval, status string
		cancelAtPeriodEnd, hasUsedTrial    int
		scheduledTier, scheduledChangeDate sql.NullString
		periodStart, periodEnd             string
		usageCount, monthlyLimit, version  int
		customerRef, subscriptionRef       string
		createdAt, updatedAt               string
	)
	err := row.Scan(
		&id, &userID, &tier, &interval, &status, &cancelAtPeriodEnd,
		&scheduledTier, &scheduledChangeDate, &periodStart, &periodEnd,
		&usageCount, &monthlyLimit, &hasUsedTrial,
		&customerRef, &subscriptionRef, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	state := domain.SubscriptionState{
		Tier:              domain.Tier(tier),
		Interval:          domain.Interval(interval),
		Status:            domain.Status(status),
		CancelAtPeriodEnd: cancelAtPeriodEnd != 0,
		UsageCount:        usageCount,
		MonthlyLimit:      monthlyLimit,
		HasUsedTrial:      hasUsedTrial != 0,
		CustomerRef:       customerRef,
		SubscriptionRef:   subscriptionRef,
		Version:           version,
	}
	if state.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if state.UserID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	if state.PeriodStart, err = time.Parse(time.RFC3339, periodStart); err != nil {
		return nil, err
	}
	if state.PeriodEnd, err = time.Parse(time.RFC3339, periodEnd); err != nil {
		return nil, err
	}
	if state.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if state.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	if scheduledTier.Valid {
		t := domain.Tier(scheduledTier.String)
		state.ScheduledTier = &t
	}
	if scheduledChangeDate.Valid {
		parsed, err := time.Parse(time.RFC3339, scheduledChangeDate.String)
		if err != nil {
			return nil, err
		}
		state.ScheduledChangeDate = &parsed
	}
	return domain.RehydrateSubscription(state), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTier(tier *domain.Tier) any {
	if tier == nil {
		return nil
	}
	return string(*tier)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
