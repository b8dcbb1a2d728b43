package commands

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/billing/domain"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// EnsureSubscriptionCommand creates the free subscription for a user if
// none exists yet. Safe to run on every signup and login.
type EnsureSubscriptionCommand struct {
	UserID uuid.UUID
}

// EnsureSubscriptionHandler handles the EnsureSubscriptionCommand.
type EnsureSubscriptionHandler struct {
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewEnsureSubscriptionHandler creates a new EnsureSubscriptionHandler.
func NewEnsureSubscriptionHandler(subRepo domain.SubscriptionRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *EnsureSubscriptionHandler {
	return &EnsureSubscriptionHandler{
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the EnsureSubscriptionCommand.
func (h *EnsureSubscriptionHandler) Handle(ctx context.Context, cmd EnsureSubscriptionCommand) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if sub == nil {
			sub = domain.NewFreeSubscription(cmd.UserID, time.Now().UTC())
			if err := h.subRepo.Save(txCtx, sub); err != nil {
				return err
			}
			if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, sub); err != nil {
				return err
			}
		}
		snapshot = domain.SnapshotOf(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}
