package queries

import (
	"context"

	"github.com/draftwise/draftwise/internal/clients/domain"
	"github.com/google/uuid"
)

// GetClientQuery fetches a single client.
type GetClientQuery struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
}

// GetClientHandler handles the GetClientQuery.
type GetClientHandler struct {
	clientRepo domain.ClientRepository
}

// NewGetClientHandler creates a new GetClientHandler.
func NewGetClientHandler(clientRepo domain.ClientRepository) *GetClientHandler {
	return &GetClientHandler{clientRepo: clientRepo}
}

// Handle executes the GetClientQuery.
func (h *GetClientHandler) Handle(ctx context.Context, query GetClientQuery) (*ClientDTO, error) {
	client, err := h.clientRepo.FindByID(ctx, query.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.UserID() != query.UserID {
		return nil, domain.ErrClientNotFound
	}

	dto := toDTO(client)
	return &dto, nil
}
