package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	billingQueries "github.com/draftwise/draftwise/internal/billing/application/queries"
	billingDomain "github.com/draftwise/draftwise/internal/billing/domain"
	billingCache "github.com/draftwise/draftwise/internal/billing/infrastructure/cache"
	billingGateway "github.com/draftwise/draftwise/internal/billing/infrastructure/gateway"
	clientCommands "github.com/draftwise/draftwise/internal/clients/application/commands"
	clientQueries "github.com/draftwise/draftwise/internal/clients/application/queries"
	clientsDomain "github.com/draftwise/draftwise/internal/clients/domain"
	draftCommands "github.com/draftwise/draftwise/internal/drafting/application/commands"
	draftQueries "github.com/draftwise/draftwise/internal/drafting/application/queries"
	draftingDomain "github.com/draftwise/draftwise/internal/drafting/domain"
	draftingProvider "github.com/draftwise/draftwise/internal/drafting/infrastructure/provider"
	sharedApplication "github.com/draftwise/draftwise/internal/shared/application"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/database"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/eventbus"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/migrations"
	"github.com/draftwise/draftwise/internal/shared/infrastructure/outbox"
	"github.com/draftwise/draftwise/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DB       *pgxpool.Pool
	SQLiteDB *sql.DB
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	SubscriptionRepo billingDomain.SubscriptionRepository
	ClientRepo       clientsDomain.ClientRepository
	DraftRepo        draftingDomain.DraftRepository
	OutboxRepo       outbox.Repository

	// Billing infrastructure
	SnapshotCache billingDomain.SnapshotCache
	Gateway       billingDomain.PaymentGateway
	Calculator    *billingDomain.ProrationCalculator

	// Publishers
	EventPublisher eventbus.Publisher
	EventBus       *eventbus.InProcessBus

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Billing command handlers
	EnsureSubscriptionHandler    *billingCommands.EnsureSubscriptionHandler
	ChangePlanHandler            *billingCommands.ChangePlanHandler
	CancelSubscriptionHandler    *billingCommands.CancelSubscriptionHandler
	CancelScheduledChangeHandler *billingCommands.CancelScheduledChangeHandler
	ResubscribeHandler           *billingCommands.ResubscribeHandler
	ConsumeQuotaHandler          *billingCommands.ConsumeQuotaHandler
	RollPeriodsHandler           *billingCommands.RollPeriodsHandler
	SyncPeriodEndHandler         *billingCommands.SyncPeriodEndHandler

	// Billing query handlers
	GetSubscriptionHandler *billingQueries.GetSubscriptionHandler
	PreviewChangeHandler   *billingQueries.PreviewChangeHandler

	// Client command handlers
	CreateClientHandler  *clientCommands.CreateClientHandler
	UpdateClientHandler  *clientCommands.UpdateClientHandler
	ArchiveClientHandler *clientCommands.ArchiveClientHandler

	// Client query handlers
	ListClientsHandler *clientQueries.ListClientsHandler
	GetClientHandler   *clientQueries.GetClientHandler

	// Drafting
	DraftProvider        draftingDomain.Provider
	GenerateDraftHandler *draftCommands.GenerateDraftHandler
	ListDraftsHandler    *draftQueries.ListDraftsHandler
	GetDraftHandler      *draftQueries.GetDraftHandler

	// Outbox processor
	OutboxProcessor *outbox.Processor
}

// NewContainer creates and wires all dependencies. The database driver is
// detected from DATABASE_URL; an empty URL selects zero-config SQLite mode,
// which also swaps Redis for an in-process cache, RabbitMQ for a noop
// publisher, and Stripe for a local gateway unless an API key is set.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	driver := database.DetectDriver(cfg.DatabaseURL)
	c.DBDriver = driver

	var factory *RepositoryFactory
	switch driver {
	case database.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		c.DB = pool
		factory = NewPostgresRepositoryFactory(pool)
		logger.Info("connected to database", "driver", driver.String())

	case database.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		c.SQLiteDB = db
		factory = NewSQLiteRepositoryFactory(db)
		logger.Info("opened local database", "driver", driver.String())

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	if err := c.wireRepositories(factory); err != nil {
		c.Close()
		return nil, err
	}

	// Snapshot cache. Redis backs it on server deployments; local mode uses
	// process memory so a single binary needs no services.
	if driver == database.DriverPostgres && cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, snapshot cache will use process memory", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					c.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, snapshot cache will use process memory", "error", err)
			} else {
				c.RedisClient = redisClient
				logger.Info("connected to Redis")
			}
		}
	}
	if c.RedisClient != nil {
		c.SnapshotCache = billingCache.NewRedisSnapshotCache(c.RedisClient, billingCache.DefaultSnapshotTTL)
	} else {
		c.SnapshotCache = billingCache.NewMemorySnapshotCache(billingCache.DefaultSnapshotTTL)
	}

	// Proration calculator and payment gateway.
	c.Calculator = billingDomain.NewProrationCalculator(billingDomain.RoundingPolicy(cfg.ProrationRounding))
	if cfg.StripeAPIKey != "" {
		c.Gateway = billingGateway.NewStripeGateway(cfg.StripeAPIKey, cfg.StripePriceIDs, logger)
		logger.Info("payment gateway configured", "gateway", "stripe")
	} else {
		if cfg.IsProduction() {
			c.Close()
			return nil, fmt.Errorf("STRIPE_API_KEY is required in production")
		}
		c.Gateway = billingGateway.NewLocalGateway(c.Calculator)
		logger.Info("payment gateway configured", "gateway", "local")
	}

	// Event publisher. RabbitMQ for server mode, an in-process bus for
	// local mode so subscribers still see outbox events.
	if driver == database.DriverPostgres {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, using noop publisher")
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		} else {
			c.EventPublisher = publisher
		}
	} else {
		bus := eventbus.NewInProcessBus(logger)
		c.EventBus = bus
		c.EventPublisher = bus
	}

	// Billing command handlers
	c.EnsureSubscriptionHandler = billingCommands.NewEnsureSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork)
	c.ChangePlanHandler = billingCommands.NewChangePlanHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.Gateway, c.Calculator, c.SnapshotCache, cfg.TrialDays)
	c.CancelSubscriptionHandler = billingCommands.NewCancelSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.Gateway, c.SnapshotCache)
	c.CancelScheduledChangeHandler = billingCommands.NewCancelScheduledChangeHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.Gateway, c.SnapshotCache)
	c.ResubscribeHandler = billingCommands.NewResubscribeHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.Gateway, c.SnapshotCache)
	c.ConsumeQuotaHandler = billingCommands.NewConsumeQuotaHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.SnapshotCache)
	c.RollPeriodsHandler = billingCommands.NewRollPeriodsHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.Gateway, c.SnapshotCache, logger)
	c.SyncPeriodEndHandler = billingCommands.NewSyncPeriodEndHandler(c.SubscriptionRepo, c.UnitOfWork, c.SnapshotCache)

	// Billing query handlers
	c.GetSubscriptionHandler = billingQueries.NewGetSubscriptionHandler(c.SubscriptionRepo, c.SnapshotCache)
	c.PreviewChangeHandler = billingQueries.NewPreviewChangeHandler(c.SubscriptionRepo, c.Calculator, c.Gateway)

	// Client handlers
	c.CreateClientHandler = clientCommands.NewCreateClientHandler(c.ClientRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateClientHandler = clientCommands.NewUpdateClientHandler(c.ClientRepo, c.OutboxRepo, c.UnitOfWork)
	c.ArchiveClientHandler = clientCommands.NewArchiveClientHandler(c.ClientRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListClientsHandler = clientQueries.NewListClientsHandler(c.ClientRepo)
	c.GetClientHandler = clientQueries.NewGetClientHandler(c.ClientRepo)

	// Drafting handlers
	c.DraftProvider = draftingProvider.NewCannedProvider()
	c.GenerateDraftHandler = draftCommands.NewGenerateDraftHandler(
		c.DraftRepo,
		c.ClientRepo,
		c.ConsumeQuotaHandler,
		c.DraftProvider,
		c.OutboxRepo,
		c.UnitOfWork,
	)
	c.ListDraftsHandler = draftQueries.NewListDraftsHandler(c.DraftRepo)
	c.GetDraftHandler = draftQueries.NewGetDraftHandler(c.DraftRepo)

	// Outbox processor
	processorConfig := outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)

	return c, nil
}

func (c *Container) wireRepositories(factory *RepositoryFactory) error {
	var err error
	if c.SubscriptionRepo, err = factory.SubscriptionRepository(); err != nil {
		return fmt.Errorf("failed to create subscription repository: %w", err)
	}
	if c.ClientRepo, err = factory.ClientRepository(); err != nil {
		return fmt.Errorf("failed to create client repository: %w", err)
	}
	if c.DraftRepo, err = factory.DraftRepository(); err != nil {
		return fmt.Errorf("failed to create draft repository: %w", err)
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		return fmt.Errorf("failed to create outbox repository: %w", err)
	}
	if c.UnitOfWork, err = factory.UnitOfWork(); err != nil {
		return fmt.Errorf("failed to create unit of work: %w", err)
	}
	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		} else {
			c.Logger.Info("SQLite connection closed")
		}
	}
}
