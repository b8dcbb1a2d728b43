// Package queries contains the read-side handlers for client records.
package queries

import (
	"context"
	"time"

	"github.com/draftwise/draftwise/internal/clients/domain"
	"github.com/google/uuid"
)

// ClientDTO is a data transfer object for clients.
type ClientDTO struct {
	ID         uuid.UUID
	Name       string
	Company    string
	Email      string
	Notes      string
	Tone       string
	IsArchived bool
	CreatedAt  time.Time
}

func toDTO(c *domain.Client) ClientDTO {
	return ClientDTO{
		ID:         c.ID(),
		Name:       c.Name(),
		Company:    c.Company(),
		Email:      c.Email(),
		Notes:      c.Notes(),
		Tone:       string(c.Tone()),
		IsArchived: c.IsArchived(),
		CreatedAt:  c.CreatedAt(),
	}
}

// ListClientsQuery contains the parameters for listing clients.
type ListClientsQuery struct {
	UserID          uuid.UUID
	IncludeArchived bool
}

// ListClientsHandler handles the ListClientsQuery.
type ListClientsHandler struct {
	clientRepo domain.ClientRepository
}

// NewListClientsHandler creates a new ListClientsHandler.
func NewListClientsHandler(clientRepo domain.ClientRepository) *ListClientsHandler {
	return &ListClientsHandler{clientRepo: clientRepo}
}

// Handle executes the ListClientsQuery.
func (h *ListClientsHandler) Handle(ctx context.Context, query ListClientsQuery) ([]ClientDTO, error) {
	clients, err := h.clientRepo.FindByUserID(ctx, query.UserID, query.IncludeArchived)
	if err != nil {
		return nil, err
	}

	dtos := make([]ClientDTO, 0, len(clients))
	for _, client := range clients {
		dtos = append(dtos, toDTO(client))
	}
	return dtos, nil
}
