package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/draftwise/draftwise/internal/drafting/domain"
	sharedPersistence "github.com/draftwise/draftwise/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteDraftRepository implements DraftRepository with SQLite for local
// mode. Times are stored as RFC3339 strings.
type SQLiteDraftRepository struct {
	dbConn *sql.DB
}

// NewSQLiteDraftRepository creates a new repository.
func NewSQLiteDraftRepository(dbConn *sql.DB) *SQLiteDraftRepository {
	return &SQLiteDraftRepository{dbConn: dbConn}
}

func (r *SQLiteDraftRepository) exec(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteExec(ctx, r.dbConn)
}

// Save inserts a new draft.
func (r *SQLiteDraftRepository) Save(ctx context.Context, draft *domain.MessageDraft) error {
	query := `
		INSERT INTO drafts (id, user_id, client_id, kind, prompt, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx).ExecContext(ctx, query,
		draft.ID().String(),
		draft.UserID().String(),
		draft.ClientID().String(),
		string(draft.Kind()),
		draft.Prompt(),
		draft.Body(),
		draft.CreatedAt().Format(time.RFC3339),
		draft.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// Update persists an edited draft body.
func (r *SQLiteDraftRepository) Update(ctx context.Context, draft *domain.MessageDraft) error {
	query := `UPDATE drafts SET body = ?, updated_at = ? WHERE id = ?`
	_, err := r.exec(ctx).ExecContext(ctx, query,
		draft.Body(),
		draft.UpdatedAt().Format(time.RFC3339),
		draft.ID().String(),
	)
	return err
}

// FindByID returns a draft by ID, or nil when absent.
func (r *SQLiteDraftRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MessageDraft, error) {
	query := selectDraft + ` WHERE id = ?`
	draft, err := scanSQLiteDraft(r.exec(ctx).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return draft, nil
}

// FindByUserID returns the user's drafts, newest first.
func (r *SQLiteDraftRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.MessageDraft, error) {
	query := selectDraft + ` WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := r.exec(ctx).QueryContext(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []*domain.MessageDraft
	for rows.Next() {
		draft, err := scanSQLiteDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

const selectDraft = `
	SELECT id, user_id, client_id, kind, prompt, body, created_at, updated_at
	FROM drafts
`

type draftScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDraft(row draftScanner) (*domain.MessageDraft, error) {
	var (
		id, userID, clientID, kind string
		createdAt, updatedAt       string
		state                      domain.DraftState
	)
	err := row.Scan(&id, &userID, &clientID, &kind, &state.Prompt, &state.Body, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	state.Kind = domain.Kind(kind)
	if state.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if state.UserID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	if state.ClientID, err = uuid.Parse(clientID); err != nil {
		return nil, err
	}
	if state.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if state.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	return domain.RehydrateDraft(state), nil
}
