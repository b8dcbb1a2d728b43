// Package persistence provides ClientRepository implementations for
// PostgreSQL and SQLite.
package persistence

import (
	"context"
	"errors"

	"github.com/draftwise/draftwise/internal/clients/domain"
	sharedPersistence "github.com/draftwise/draftwise/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresClientRepository implements ClientRepository with PostgreSQL.
type PostgresClientRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresClientRepository creates a new repository.
func NewPostgresClientRepository(pool *pgxpool.Pool) *PostgresClientRepository {
	return &PostgresClientRepository{pool: pool}
}

const clientColumns = `id, user_id, name, company, email, notes, tone, archived, created_at, updated_at`

// Save inserts a new client.
func (r *PostgresClientRepository) Save(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		client.ID(),
		client.UserID(),
		client.Name(),
		client.Company(),
		client.Email(),
		client.Notes(),
		string(client.Tone()),
		client.IsArchived(),
		client.CreatedAt(),
		client.UpdatedAt(),
	)
	return err
}

// Update persists a modified client.
func (r *PostgresClientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients SET
			name = $1, company = $2, email = $3, notes = $4,
			tone = $5, archived = $6, updated_at = $7
		WHERE id = $8
	`
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		client.Name(),
		client.Company(),
		client.Email(),
		client.Notes(),
		string(client.Tone()),
		client.IsArchived(),
		client.UpdatedAt(),
		client.ID(),
	)
	return err
}

// FindByID returns a client by ID, or nil when absent.
func (r *PostgresClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	exec := sharedPersistence.Executor(ctx, r.pool)

	client, err := scanClient(exec.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

// FindByUserID returns the user's clients ordered by name.
func (r *PostgresClientRepository) FindByUserID(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1`
	if !includeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY name`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		state domain.ClientState
		tone  string
	)
	err := row.Scan(
		&state.ID,
		&state.UserID,
		&state.Name,
		&state.Company,
		&state.Email,
		&state.Notes,
		&tone,
		&state.Archived,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	state.Tone = domain.Tone(tone)
	return domain.RehydrateClient(state), nil
}
