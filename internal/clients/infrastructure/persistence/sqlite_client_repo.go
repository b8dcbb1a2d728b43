package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/draftwise/draftwise/internal/clients/domain"
	sharedPersistence "github.com/draftwise/draftwise/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteClientRepository implements ClientRepository with SQLite for local
// mode. Times are stored as RFC3339 strings.
type SQLiteClientRepository struct {
	dbConn *sql.DB
}

// NewSQLiteClientRepository creates a new repository.
func NewSQLiteClientRepository(dbConn *sql.DB) *SQLiteClientRepository {
	return &SQLiteClientRepository{dbConn: dbConn}
}

func (r *SQLiteClientRepository) exec(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteExec(ctx, r.dbConn)
}

// Save inserts a new client.
func (r *SQLiteClientRepository) Save(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, user_id, name, company, email, notes, tone, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx).ExecContext(ctx, query,
		client.ID().String(),
		client.UserID().String(),
		client.Name(),
		client.Company(),
		client.Email(),
		client.Notes(),
		string(client.Tone()),
		archivedInt(client),
		client.CreatedAt().Format(time.RFC3339),
		client.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// Update persists a modified client.
func (r *SQLiteClientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients SET
			name = ?, company = ?, email = ?, notes = ?,
			tone = ?, archived = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.exec(ctx).ExecContext(ctx, query,
		client.Name(),
		client.Company(),
		client.Email(),
		client.Notes(),
		string(client.Tone()),
		archivedInt(client),
		client.UpdatedAt().Format(time.RFC3339),
		client.ID().String(),
	)
	return err
}

// FindByID returns a client by ID, or nil when absent.
func (r *SQLiteClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := selectClient + ` WHERE id = ?`
	client, err := scanSQLiteClient(r.exec(ctx).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

// FindByUserID returns the user's clients ordered by name.
func (r *SQLiteClientRepository) FindByUserID(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*domain.Client, error) {
	query := selectClient + ` WHERE user_id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := r.exec(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client, err := scanSQLiteClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

const selectClient = `
	SELECT id, user_id, name, company, email, notes, tone, archived, created_at, updated_at
	FROM clients
`

type clientScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteClient(row clientScanner) (*domain.Client, error) {
	var (
		id, userID, tone     string
		createdAt, updatedAt string
		archived             int
		state                domain.ClientState
	)
	err := row.Scan(
		&id, &userID, &state.Name, &state.Company, &state.Email,
		&state.Notes, &tone, &archived, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	state.Tone = domain.Tone(tone)
	state.Archived = archived != 0
	if state.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if state.UserID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	if state.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if state.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	return domain.RehydrateClient(state), nil
}

func archivedInt(client *domain.Client) int {
	if client.IsArchived() {
		return 1
	}
	return 0
}
