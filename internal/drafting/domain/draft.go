package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/draftwise/draftwise/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrDraftEmptyPrompt = errors.New("draft prompt cannot be empty")
	ErrDraftInvalidKind = errors.New("invalid draft kind")
	ErrDraftNotFound    = errors.New("draft not found")
)

// Kind is the type of message being drafted.
type Kind string

const (
	KindEmail    Kind = "email"
	KindFollowUp Kind = "followup"
	KindProposal Kind = "proposal"
	KindPitch    Kind = "pitch"
)

// IsValid checks if the kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindEmail, KindFollowUp, KindProposal, KindPitch:
		return true
	default:
		return false
	}
}

// MessageDraft is a generated message for a client. Generating one consumes
// a unit of the user's monthly draft quota.
type MessageDraft struct {
	sharedDomain.BaseAggregateRoot
	userID   uuid.UUID
	clientID uuid.UUID
	kind     Kind
	prompt   string
	body     string
}

// NewMessageDraft creates a draft with its generated body.
func NewMessageDraft(userID, clientID uuid.UUID, kind Kind, prompt, body string) (*MessageDraft, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrDraftEmptyPrompt
	}
	if !kind.IsValid() {
		return nil, ErrDraftInvalidKind
	}

	draft := &MessageDraft{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		clientID:          clientID,
		kind:              kind,
		prompt:            prompt,
		body:              body,
	}

	draft.AddDomainEvent(NewDraftGenerated(draft))

	return draft, nil
}

// Getters
func (d *MessageDraft) UserID() uuid.UUID   { return d.userID }
func (d *MessageDraft) ClientID() uuid.UUID { return d.clientID }
func (d *MessageDraft) Kind() Kind          { return d.kind }
func (d *MessageDraft) Prompt() string      { return d.prompt }
func (d *MessageDraft) Body() string        { return d.body }

// SetBody replaces the draft body after a manual edit.
func (d *MessageDraft) SetBody(body string) {
	d.body = body
	d.Touch()
}

// DraftState is the persisted form of a draft.
type DraftState struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ClientID  uuid.UUID
	Kind      Kind
	Prompt    string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RehydrateDraft recreates a draft from persisted state.
func RehydrateDraft(state DraftState) *MessageDraft {
	entity := sharedDomain.RehydrateBaseEntity(state.ID, state.CreatedAt, state.UpdatedAt)
	return &MessageDraft{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, 0),
		userID:            state.UserID,
		clientID:          state.ClientID,
		kind:              state.Kind,
		prompt:            state.Prompt,
		body:              state.Body,
	}
}
