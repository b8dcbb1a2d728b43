package commands

import (
	"context"

	"github.com/draftwise/draftwise/internal/clients/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ArchiveClientCommand archives a client.
type ArchiveClientCommand struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
}

// ArchiveClientHandler handles the ArchiveClientCommand.
type ArchiveClientHandler struct {
	clientRepo domain.ClientRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewArchiveClientHandler creates a new ArchiveClientHandler.
func NewArchiveClientHandler(clientRepo domain.ClientRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ArchiveClientHandler {
	return &ArchiveClientHandler{
		clientRepo: clientRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the ArchiveClientCommand.
func (h *ArchiveClientHandler) Handle(ctx context.Context, cmd ArchiveClientCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		client, err := loadOwned(txCtx, h.clientRepo, cmd.ClientID, cmd.UserID)
		if err != nil {
			return err
		}

		client.Archive()

		if err := h.clientRepo.Update(txCtx, client); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, cmd.UserID, client)
	})
}
