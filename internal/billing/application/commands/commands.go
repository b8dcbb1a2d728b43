// Package commands contains the write-side handlers for the subscription
// lifecycle. Every handler runs as a single transaction scoped to one
// subscription row; gateway calls happen inside that scope so a declined
// charge rolls the whole transition back.
package commands

import (
	"context"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// stageEvents drains the aggregate's events into the outbox within the
// current transaction.
func stageEvents(ctx context.Context, outboxRepo outbox.Repository, userID uuid.UUID, sub *domain.Subscription) error {
	events := sub.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(userID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := outboxRepo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	sub.ClearDomainEvents()
	return nil
}

// invalidate drops the cached snapshot after a committed mutation. A
// failed invalidation is tolerable: the cache entry expires on its TTL
// and the next mutation retries.
func invalidate(ctx context.Context, cache domain.SnapshotCache, userID uuid.UUID) {
	if cache != nil {
		_ = cache.Invalidate(ctx, userID)
	}
}
