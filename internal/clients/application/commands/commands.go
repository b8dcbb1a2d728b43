// Package commands contains the write-side handlers for client records.
package commands

import (
	"context"

	"github.com/draftwise/draftwise/internal/clients/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// stageEvents drains the aggregate's events into the outbox within the
// current transaction.
func stageEvents(ctx context.Context, outboxRepo outbox.Repository, userID uuid.UUID, client *domain.Client) error {
	events := client.DomainEvents()
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
	client.ClearDomainEvents()
	return nil
}

// loadOwned fetches a client and checks it belongs to the calling user.
func loadOwned(ctx context.Context, repo domain.ClientRepository, clientID, userID uuid.UUID) (*domain.Client, error) {
	client, err := repo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.UserID() != userID {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}
