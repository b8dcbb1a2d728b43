package queries

import (
	"context"

	"github.com/draftwise/draftwise/internal/drafting/domain"
	"github.com/google/uuid"
)

// GetDraftQuery fetches a single draft.
type GetDraftQuery struct {
	UserID  uuid.UUID
	DraftID uuid.UUID
}

// GetDraftHandler handles the GetDraftQuery.
type GetDraftHandler struct {
	draftRepo domain.DraftRepository
}

// NewGetDraftHandler creates a new GetDraftHandler.
func NewGetDraftHandler(draftRepo domain.DraftRepository) *GetDraftHandler {
	return &GetDraftHandler{draftRepo: draftRepo}
}

// Handle executes the GetDraftQuery.
func (h *GetDraftHandler) Handle(ctx context.Context, query GetDraftQuery) (*DraftDTO, error) {
	draft, err := h.draftRepo.FindByID(ctx, query.DraftID)
	if err != nil {
		return nil, err
	}
	if draft == nil || draft.UserID() != query.UserID {
		return nil, domain.ErrDraftNotFound
	}

	dto := toDTO(draft)
	return &dto, nil
}
