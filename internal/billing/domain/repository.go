package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriptionRepository defines access for subscription persistence.
// Update enforces the single-writer discipline: the row is written only if
// its stored version still matches the aggregate's loaded version, and a
// lost race surfaces as ErrStaleState.
type SubscriptionRepository interface {
	Save(ctx context.Context, subscription *Subscription) error
	Update(ctx context.Context, subscription *Subscription) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	FindBySubscriptionRef(ctx context.Context, subscriptionRef string) (*Subscription, error)

	// FindDue lists subscriptions whose period end has passed, for the
	// boundary worker to roll.
	FindDue(ctx context.Context, before time.Time, limit int) ([]*Subscription, error)
}
