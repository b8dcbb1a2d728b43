// Package persistence provides DraftRepository implementations for
// PostgreSQL and SQLite.
package persistence

import (
	"context"
	"errors"

	"github.com/draftwise/draftwise/internal/drafting/domain"
	sharedPersistence "github.com/draftwise/draftwise/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDraftRepository implements DraftRepository with PostgreSQL.
type PostgresDraftRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDraftRepository creates a new repository.
func NewPostgresDraftRepository(pool *pgxpool.Pool) *PostgresDraftRepository {
	return &PostgresDraftRepository{pool: pool}
}

const draftColumns = `id, user_id, client_id, kind, prompt, body, created_at, updated_at`

// Save inserts a new draft.
func (r *PostgresDraftRepository) Save(ctx context.Context, draft *domain.MessageDraft) error {
	query := `
		INSERT INTO drafts (` + draftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		draft.ID(),
		draft.UserID(),
		draft.ClientID(),
		string(draft.Kind()),
		draft.Prompt(),
		draft.Body(),
		draft.CreatedAt(),
		draft.UpdatedAt(),
	)
	return err
}

// Update persists an edited draft body.
func (r *PostgresDraftRepository) Update(ctx context.Context, draft *domain.MessageDraft) error {
	query := `UPDATE drafts SET body = $1, updated_at = $2 WHERE id = $3`
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query, draft.Body(), draft.UpdatedAt(), draft.ID())
	return err
}

// FindByID returns a draft by ID, or nil when absent.
func (r *PostgresDraftRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MessageDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1`
	exec := sharedPersistence.Executor(ctx, r.pool)

	draft, err := scanDraft(exec.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return draft, nil
}

// FindByUserID returns the user's drafts, newest first.
func (r *PostgresDraftRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.MessageDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []*domain.MessageDraft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

func scanDraft(row pgx.Row) (*domain.MessageDraft, error) {
	var (
		state domain.DraftState
		kind  string
	)
	err := row.Scan(
		&state.ID,
		&state.UserID,
		&state.ClientID,
		&kind,
		&state.Prompt,
		&state.Body,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	state.Kind = domain.Kind(kind)
	return domain.RehydrateDraft(state), nil
}
