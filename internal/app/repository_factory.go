package app

import (
	"database/sql"
	"fmt"

	billingDomain "github.com/draftwise/draftwise/internal/billing/domain"
	billingPersistence "github.com/draftwise/draftwise/internal/billing/infrastructure/persistence"
	clientsDomain "github.com/draftwise/draftwise/internal/clients/domain"
	clientsPersistence "github.com/draftwise/draftwise/internal/clients/infrastructure/persistence"
	draftingDomain "github.com/draftwise/draftwise/internal/drafting/domain"
	draftingPersistence "github.com/draftwise/draftwise/internal/drafting/infrastructure/persistence"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/database"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/draftwise/draftwise/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryFactory creates repositories for the active database driver.
// Exactly one of pool or db is set, matching the driver.
type RepositoryFactory struct {
	driver database.Driver
	pool   *pgxpool.Pool
	db     *sql.DB
}

// NewPostgresRepositoryFactory creates a factory backed by a pgx pool.
func NewPostgresRepositoryFactory(pool *pgxpool.Pool) *RepositoryFactory {
	return &RepositoryFactory{driver: database.DriverPostgres, pool: pool}
}

// NewSQLiteRepositoryFactory creates a factory backed by a SQLite database.
func NewSQLiteRepositoryFactory(db *sql.DB) *RepositoryFactory {
	return &RepositoryFactory{driver: database.DriverSQLite, db: db}
}

// Driver returns the database driver this factory builds for.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// SubscriptionRepository creates a subscription repository.
func (f *RepositoryFactory) SubscriptionRepository() (billingDomain.SubscriptionRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return billingPersistence.NewPostgresSubscriptionRepository(f.pool), nil
	case database.DriverSQLite:
		return billingPersistence.NewSQLiteSubscriptionRepository(f.db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", f.driver)
	}
}

// ClientRepository creates a client repository.
func (f *RepositoryFactory) ClientRepository() (clientsDomain.ClientRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return clientsPersistence.NewPostgresClientRepository(f.pool), nil
	case database.DriverSQLite:
		return clientsPersistence.NewSQLiteClientRepository(f.db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", f.driver)
	}
}

// DraftRepository creates a message draft repository.
func (f *RepositoryFactory) DraftRepository() (draftingDomain.DraftRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return draftingPersistence.NewPostgresDraftRepository(f.pool), nil
	case database.DriverSQLite:
		return draftingPersistence.NewSQLiteDraftRepository(f.db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return outbox.NewPostgresRepository(f.pool), nil
	case database.DriverSQLite:
		return outbox.NewSQLiteRepository(f.db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", f.driver)
	}
}

// UnitOfWork creates a unit of work bound to the active connection.
func (f *RepositoryFactory) UnitOfWork() (sharedApplication.UnitOfWork, error) {
	switch f.driver {
	case database.DriverPostgres:
		return sharedPersistence.NewPostgresUnitOfWork(f.pool), nil
	case database.DriverSQLite:
		return sharedPersistence.NewSQLiteUnitOfWork(f.db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", f.driver)
	}
}
