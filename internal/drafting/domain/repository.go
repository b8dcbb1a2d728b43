package domain

import (
	"context"

	"github.com/google/uuid"
)

// DraftRepository persists drafts.
type DraftRepository interface {
	Save(ctx context.Context, draft *MessageDraft) error
	Update(ctx context.Context, draft *MessageDraft) error
	FindByID(ctx context.Context, id uuid.UUID) (*MessageDraft, error)
	// FindByUserID returns the user's drafts, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*MessageDraft, error)
}
