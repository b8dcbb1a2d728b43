package domain

import (
	sharedDomain "github.com/draftwise/draftwise/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "MessageDraft"

// DraftGenerated is emitted when a draft is generated for a client.
type DraftGenerated struct {
	sharedDomain.BaseEvent
	DraftID  uuid.UUID `json:"draft_id"`
	UserID   uuid.UUID `json:"user_id"`
	ClientID uuid.UUID `json:"client_id"`
	Kind     string    `json:"kind"`
}

// NewDraftGenerated creates a DraftGenerated event.
func NewDraftGenerated(d *MessageDraft) *DraftGenerated {
	return &DraftGenerated{
		BaseEvent: sharedDomain.NewBaseEvent(d.ID(), aggregateType, "drafting.draft.generated"),
		DraftID:   d.ID(),
		UserID:    d.UserID(),
		ClientID:  d.ClientID(),
		Kind:      string(d.Kind()),
	}
}
