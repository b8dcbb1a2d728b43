package commands

import (
	"context"

	"github.com/draftwise/draftwise/internal/clients/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// UpdateClientCommand updates client fields. Nil pointers leave the field
// untouched.
type UpdateClientCommand struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
	Name     *string
	Company  *string
	Email    *string
	Notes    *string
	Tone     *string
}

// UpdateClientHandler handles the UpdateClientCommand.
type UpdateClientHandler struct {
	clientRepo domain.ClientRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewUpdateClientHandler creates a new UpdateClientHandler.
func NewUpdateClientHandler(clientRepo domain.ClientRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateClientHandler {
	return &UpdateClientHandler{
		clientRepo: clientRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the UpdateClientCommand.
func (h *UpdateClientHandler) Handle(ctx context.Context, cmd UpdateClientCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		client, err := loadOwned(txCtx, h.clientRepo, cmd.ClientID, cmd.UserID)
		if err != nil {
			return err
		}

		if cmd.Name != nil {
			if err := client.SetName(*cmd.Name); err != nil {
				return err
			}
		}
		if cmd.Company != nil {
			if err := client.SetCompany(*cmd.Company); err != nil {
				return err
			}
		}
		if cmd.Email != nil {
			if err := client.SetEmail(*cmd.Email); err != nil {
				return err
			}
		}
		if cmd.Notes != nil {
			if err := client.SetNotes(*cmd.Notes); err != nil {
				return err
			}
		}
		if cmd.Tone != nil {
			if err := client.SetTone(domain.Tone(*cmd.Tone)); err != nil {
				return err
			}
		}

		if err := h.clientRepo.Update(txCtx, client); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, cmd.UserID, client)
	})
}
