package domain

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository persists clients.
type ClientRepository interface {
	Save(ctx context.Context, client *Client) error
	Update(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	// FindByUserID returns the user's clients, optionally including archived
	// ones, ordered by name.
	FindByUserID(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*Client, error)
}
