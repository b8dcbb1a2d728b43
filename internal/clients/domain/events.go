package domain

import (
	sharedDomain "github.com/draftwise/draftwise/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Client"

// ClientCreated is emitted when a client is added.
type ClientCreated struct {
	sharedDomain.BaseEvent
	ClientID uuid.UUID `json:"client_id"`
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
}

// NewClientCreated creates a ClientCreated event.
func NewClientCreated(c *Client) *ClientCreated {
	return &ClientCreated{
		BaseEvent: sharedDomain.NewBaseEvent(c.ID(), aggregateType, "clients.client.created"),
		ClientID:  c.ID(),
		UserID:    c.UserID(),
		Name:      c.Name(),
	}
}

// ClientArchived is emitted when a client is archived.
type ClientArchived struct {
	sharedDomain.BaseEvent
	ClientID uuid.UUID `json:"client_id"`
	UserID   uuid.UUID `json:"user_id"`
}

// NewClientArchived creates a ClientArchived event.
func NewClientArchived(c *Client) *ClientArchived {
	return &ClientArchived{
		BaseEvent: sharedDomain.NewBaseEvent(c.ID(), aggregateType, "clients.client.archived"),
		ClientID:  c.ID(),
		UserID:    c.UserID(),
	}
}
