package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/draftwise/draftwise/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrClientEmptyName   = errors.New("client name cannot be empty")
	ErrClientInvalidTone = errors.New("invalid tone")
	ErrClientArchived    = errors.New("client is archived")
	ErrClientNotFound    = errors.New("client not found")
)

// Tone is the default writing tone used when drafting messages for a client.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
)

// IsValid checks if the tone is valid.
func (t Tone) IsValid() bool {
	switch t {
	case ToneProfessional, ToneFriendly, ToneFormal, ToneCasual:
		return true
	default:
		return false
	}
}

// Client represents a person or company the freelancer writes for.
type Client struct {
	sharedDomain.BaseAggregateRoot
	userID   uuid.UUID
	name     string
	company  string
	email    string
	notes    string
	tone     Tone
	archived bool
}

// NewClient creates a new client.
func NewClient(userID uuid.UUID, name, company, email string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrClientEmptyName
	}

	client := &Client{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		name:              name,
		company:           strings.TrimSpace(company),
		email:             strings.TrimSpace(email),
		tone:              ToneProfessional,
	}

	client.AddDomainEvent(NewClientCreated(client))

	return client, nil
}

// Getters
func (c *Client) UserID() uuid.UUID { return c.userID }
func (c *Client) Name() string      { return c.name }
func (c *Client) Company() string   { return c.company }
func (c *Client) Email() string     { return c.email }
func (c *Client) Notes() string     { return c.notes }
func (c *Client) Tone() Tone        { return c.tone }
func (c *Client) IsArchived() bool  { return c.archived }

// SetName updates the client name.
func (c *Client) SetName(name string) error {
	if c.archived {
		return ErrClientArchived
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrClientEmptyName
	}
	c.name = name
	c.Touch()
	return nil
}

// SetCompany updates the company.
func (c *Client) SetCompany(company string) error {
	if c.archived {
		return ErrClientArchived
	}
	c.company = strings.TrimSpace(company)
	c.Touch()
	return nil
}

// SetEmail updates the contact email.
func (c *Client) SetEmail(email string) error {
	if c.archived {
		return ErrClientArchived
	}
	c.email = strings.TrimSpace(email)
	c.Touch()
	return nil
}

// SetNotes updates the free-form notes.
func (c *Client) SetNotes(notes string) error {
	if c.archived {
		return ErrClientArchived
	}
	c.notes = notes
	c.Touch()
	return nil
}

// SetTone updates the default drafting tone.
func (c *Client) SetTone(tone Tone) error {
	if c.archived {
		return ErrClientArchived
	}
	if !tone.IsValid() {
		return ErrClientInvalidTone
	}
	c.tone = tone
	c.Touch()
	return nil
}

// Archive hides the client from listings. Archiving twice is a no-op.
func (c *Client) Archive() {
	if c.archived {
		return
	}
	c.archived = true
	c.Touch()
	c.AddDomainEvent(NewClientArchived(c))
}

// ClientState is the persisted form of a client.
type ClientState struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Company   string
	Email     string
	Notes     string
	Tone      Tone
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RehydrateClient recreates a client from persisted state.
func RehydrateClient(state ClientState) *Client {
	entity := sharedDomain.RehydrateBaseEntity(state.ID, state.CreatedAt, state.UpdatedAt)
	return &Client{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, 0),
		userID:            state.UserID,
		name:              state.Name,
		company:           state.Company,
		email:             state.Email,
		notes:             state.Notes,
		tone:              state.Tone,
		archived:          state.Archived,
	}
}
