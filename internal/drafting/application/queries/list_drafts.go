// Package queries contains the read-side handlers for drafting.
package queries

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/drafting/domain"
	"github.com/google/uuid"
)

// DraftDTO is a data transfer object for drafts.
type DraftDTO struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Kind      string
	Prompt    string
	Body      string
	CreatedAt time.Time
}

func toDTO(d *domain.MessageDraft) DraftDTO {
	return DraftDTO{
		ID:        d.ID(),
		ClientID:  d.ClientID(),
		Kind:      string(d.Kind()),
		Prompt:    d.Prompt(),
		Body:      d.Body(),
		CreatedAt: d.CreatedAt(),
	}
}

// ListDraftsQuery contains the parameters for listing drafts.
type ListDraftsQuery struct {
	UserID uuid.UUID
	Limit  int
}

// ListDraftsHandler handles the ListDraftsQuery.
type ListDraftsHandler struct {
	draftRepo domain.DraftRepository
}

// NewListDraftsHandler creates a new ListDraftsHandler.
func NewListDraftsHandler(draftRepo domain.DraftRepository) *ListDraftsHandler {
	return &ListDraftsHandler{draftRepo: draftRepo}
}

// Handle executes the ListDraftsQuery.
func (h *ListDraftsHandler) Handle(ctx context.Context, query ListDraftsQuery) ([]DraftDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	drafts, err := h.draftRepo.FindByUserID(ctx, query.UserID, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]DraftDTO, 0, len(drafts))
	for _, draft := range drafts {
		dtos = append(dtos, toDTO(draft))
	}
	return dtos, nil
}
