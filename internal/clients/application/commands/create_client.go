package commands

import (
	"context"

	"github.com/draftwise/draftwise/internal/clients/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CreateClientCommand contains the data needed to add a client.
type CreateClientCommand struct {
	UserID  uuid.UUID
	Name    string
	Company string
	Email   string
	Notes   string
	Tone    string
}

// CreateClientResult contains the result of adding a client.
type CreateClientResult struct {
	ClientID uuid.UUID
}

// CreateClientHandler handles the CreateClientCommand.
type CreateClientHandler struct {
	clientRepo domain.ClientRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateClientHandler creates a new CreateClientHandler.
func NewCreateClientHandler(clientRepo domain.ClientRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateClientHandler {
	return &CreateClientHandler{
		clientRepo: clientRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateClientCommand.
func (h *CreateClientHandler) Handle(ctx context.Context, cmd CreateClientCommand) (*CreateClientResult, error) {
	var result *CreateClientResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		client, err := domain.NewClient(cmd.UserID, cmd.Name, cmd.Company, cmd.Email)
		if err != nil {
			return err
		}

		if cmd.Notes != "" {
			if err := client.SetNotes(cmd.Notes); err != nil {
				return err
			}
		}
		if cmd.Tone != "" {
			if err := client.SetTone(domain.Tone(cmd.Tone)); err != nil {
				return err
			}
		}

		if err := h.clientRepo.Save(txCtx, client); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, client); err != nil {
			return err
		}

		result = &CreateClientResult{ClientID: client.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
