// Package commands contains the write-side handlers for drafting.
package commands

import (
	"context"

	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	clientsDomain "github.com/draftwise/draftwise/internal/clients/domain"
	"github.com/draftwise/draftwise/internal/drafting/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// QuotaConsumer consumes one unit of the user's monthly draft quota.
// Satisfied by the billing ConsumeQuotaHandler.
type QuotaConsumer interface {
	Handle(ctx context.Context, cmd billingCommands.ConsumeQuotaCommand) (*billingCommands.ConsumeQuotaResult, error)
}

// GenerateDraftCommand contains the data needed to generate a draft.
type GenerateDraftCommand struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
	Kind     string
	Prompt   string
}

// GenerateDraftResult contains the generated draft and the quota state
// after consuming.
type GenerateDraftResult struct {
	DraftID         uuid.UUID
	Body            string
	RemainingDrafts int
	Unlimited       bool
}

// GenerateDraftHandler generates a message draft. The quota is consumed
// before the provider is called; a user over their limit gets the quota
// error and no generation happens.
type GenerateDraftHandler struct {
	draftRepo  domain.DraftRepository
	clientRepo clientsDomain.ClientRepository
	quota      QuotaConsumer
	provider   domain.Provider
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewGenerateDraftHandler creates a new GenerateDraftHandler.
func NewGenerateDraftHandler(
	draftRepo domain.DraftRepository,
	clientRepo clientsDomain.ClientRepository,
	quota QuotaConsumer,
	provider domain.Provider,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *GenerateDraftHandler {
	return &GenerateDraftHandler{
		draftRepo:  draftRepo,
		clientRepo: clientRepo,
		quota:      quota,
		provider:   provider,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the GenerateDraftCommand.
func (h *GenerateDraftHandler) Handle(ctx context.Context, cmd GenerateDraftCommand) (*GenerateDraftResult, error) {
	kind := domain.Kind(cmd.Kind)
	if !kind.IsValid() {
		return nil, domain.ErrDraftInvalidKind
	}

	client, err := h.clientRepo.FindByID(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.UserID() != cmd.UserID {
		return nil, clientsDomain.ErrClientNotFound
	}

	// Consume quota first, in its own transaction. A failed generation
	// afterwards does not refund the unit.
	quotaResult, err := h.quota.Handle(ctx, billingCommands.ConsumeQuotaCommand{UserID: cmd.UserID})
	if err != nil {
		return nil, err
	}

	body, err := h.provider.Generate(ctx, domain.GenerateRequest{
		ClientName: client.Name(),
		Company:    client.Company(),
		Tone:       string(client.Tone()),
		Kind:       kind,
		Prompt:     cmd.Prompt,
	})
	if err != nil {
		return nil, err
	}

	var result *GenerateDraftResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		draft, err := domain.NewMessageDraft(cmd.UserID, cmd.ClientID, kind, cmd.Prompt, body)
		if err != nil {
			return err
		}

		if err := h.draftRepo.Save(txCtx, draft); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, draft); err != nil {
			return err
		}

		result = &GenerateDraftResult{
			DraftID:         draft.ID(),
			Body:            draft.Body(),
			RemainingDrafts: quotaResult.RemainingDrafts,
			Unlimited:       quotaResult.Unlimited,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// stageEvents drains the aggregate's events into the outbox within the
// current transaction.
func stageEvents(ctx context.Context, outboxRepo outbox.Repository, userID uuid.UUID, draft *domain.MessageDraft) error {
	events := draft.DomainEvents()
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
	draft.ClearDomainEvents()
	return nil
}
