package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the read model handed to the UI and cached between reads.
type Snapshot struct {
	SubscriptionID      uuid.UUID  `json:"subscription_id"`
	UserID              uuid.UUID  `json:"user_id"`
	Tier                Tier       `json:"tier"`
	Interval            Interval   `json:"interval"`
	Status              Status     `json:"status"`
	CancelAtPeriodEnd   bool       `json:"cancel_at_period_end"`
	ScheduledTier       *Tier      `json:"scheduled_tier,omitempty"`
	ScheduledChangeDate *time.Time `json:"scheduled_change_date,omitempty"`
	PeriodStart         time.Time  `json:"period_start"`
	PeriodEnd           time.Time  `json:"period_end"`
	UsageCount          int        `json:"usage_count"`
	MonthlyLimit        int        `json:"monthly_limit"`
	RemainingDrafts     int        `json:"remaining_drafts"`
	Unlimited           bool       `json:"unlimited"`
	HasUsedTrial        bool       `json:"has_used_trial"`
	Version             int        `json:"version"`
}

// SnapshotOf builds the read model from the aggregate.
func SnapshotOf(s *Subscription) Snapshot {
	return Snapshot{
		SubscriptionID:      s.ID(),
		UserID:              s.UserID(),
		Tier:                s.Tier(),
		Interval:            s.Interval(),
		Status:              s.Status(),
		CancelAtPeriodEnd:   s.CancelAtPeriodEnd(),
		ScheduledTier:       s.ScheduledTier(),
		ScheduledChangeDate: s.ScheduledChangeDate(),
		PeriodStart:         s.PeriodStart(),
		PeriodEnd:           s.PeriodEnd(),
		UsageCount:          s.UsageCount(),
		MonthlyLimit:        s.MonthlyLimit(),
		RemainingDrafts:     s.RemainingDrafts(),
		Unlimited:           s.IsUnlimited(),
		HasUsedTrial:        s.HasUsedTrial(),
		Version:             s.Version(),
	}
}

// SnapshotCache is a read-through cache over subscription snapshots.
// Every state-machine mutation invalidates explicitly; the cache is never
// the source of truth.
type SnapshotCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
	Set(ctx context.Context, snapshot Snapshot) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}
