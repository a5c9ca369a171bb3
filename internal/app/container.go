// Package app wires the sitework dependencies shared by the CLI, the MCP
// server and the outbox worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/cache"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/persistence"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/report"
	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/sitework/internal/shared/infrastructure/database/postgres" // register PostgreSQL
	_ "github.com/felixgeelhaar/sitework/internal/shared/infrastructure/database/sqlite"   // register SQLite
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/sitework/pkg/config"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ProgressCache is the read cache the progress query fills and the command
// handlers invalidate.
type ProgressCache interface {
	queries.ProgressCache
	Invalidate(ctx context.Context, buildingID uuid.UUID) error
}

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	DB          database.Connection
	RedisClient *redis.Client

	// Repositories
	BuildingRepo *persistence.BuildingRepository
	ProjectRepo  *persistence.ProjectRepository
	MaterialRepo *persistence.MaterialRepository
	OutboxRepo   outbox.Repository

	UnitOfWork    sharedApplication.UnitOfWork
	ProgressCache ProgressCache
	Reports       *report.YAMLRenderer

	// Command handlers
	CreateProject       *commands.CreateProjectHandler
	CreateBuilding      *commands.CreateBuildingHandler
	DeleteBuilding      *commands.DeleteBuildingHandler
	StopBuilding        *commands.StopBuildingHandler
	StartSubstage       *commands.StartSubstageHandler
	FinishSubstage      *commands.FinishSubstageHandler
	ResetSubstage       *commands.ResetSubstageHandler
	SetLaborCost        *commands.SetLaborCostHandler
	RecordUsage         *commands.RecordMaterialUsageHandler
	CreateMaterial      *commands.CreateMaterialHandler
	RecordMaterialPrice *commands.RecordMaterialPriceHandler
	PayProject          *commands.PayProjectHandler

	// Query handlers
	BuildingProgress *queries.GetBuildingProgressHandler
	ListBuildings    *queries.ListBuildingsHandler
	ProjectProgress  *queries.GetProjectProgressHandler
	ListProjects     *queries.ListProjectsHandler
	PreviewPayments  *queries.PreviewPaymentsHandler
	SubstageCost     *queries.GetSubstageCostHandler
	GetMaterial      *queries.GetMaterialHandler
	ListMaterials    *queries.ListMaterialsHandler
}

// NewContainer opens the database, applies migrations and wires every
// handler. A nil metrics collector records nothing.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics observability.Metrics) (*Container, error) {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	c := &Container{Config: cfg, Logger: logger, Metrics: metrics}

	conn, err := database.Open(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = conn
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver().String())

	progress, err := c.connectCache(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	c.ProgressCache = progress

	c.BuildingRepo = persistence.NewBuildingRepository(conn)
	c.ProjectRepo = persistence.NewProjectRepository(conn)
	c.MaterialRepo = persistence.NewMaterialRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.Reports = report.NewYAMLRenderer(cfg.ReportDir)

	deps := commands.Deps{
		Buildings: c.BuildingRepo,
		Projects:  c.ProjectRepo,
		Materials: c.MaterialRepo,
		Outbox:    c.OutboxRepo,
		UoW:       c.UnitOfWork,
		Cache:     c.ProgressCache,
		Logger:    logger,
		Metrics:   metrics,
	}
	c.CreateProject = commands.NewCreateProjectHandler(deps)
	c.CreateBuilding = commands.NewCreateBuildingHandler(deps)
	c.DeleteBuilding = commands.NewDeleteBuildingHandler(deps)
	c.StopBuilding = commands.NewStopBuildingHandler(deps)
	c.StartSubstage = commands.NewStartSubstageHandler(deps)
	c.FinishSubstage = commands.NewFinishSubstageHandler(deps)
	c.ResetSubstage = commands.NewResetSubstageHandler(deps)
	c.SetLaborCost = commands.NewSetLaborCostHandler(deps)
	c.RecordUsage = commands.NewRecordMaterialUsageHandler(deps)
	c.CreateMaterial = commands.NewCreateMaterialHandler(deps)
	c.RecordMaterialPrice = commands.NewRecordMaterialPriceHandler(deps)
	c.PayProject = commands.NewPayProjectHandler(deps, c.Reports)

	c.BuildingProgress = queries.NewGetBuildingProgressHandler(c.BuildingRepo, c.ProgressCache, logger).WithMetrics(metrics)
	c.ListBuildings = queries.NewListBuildingsHandler(c.BuildingRepo)
	c.ProjectProgress = queries.NewGetProjectProgressHandler(c.ProjectRepo)
	c.ListProjects = queries.NewListProjectsHandler(c.ProjectRepo)
	c.PreviewPayments = queries.NewPreviewPaymentsHandler(c.ProjectRepo)
	c.SubstageCost = queries.NewGetSubstageCostHandler(c.BuildingRepo, c.MaterialRepo)
	c.GetMaterial = queries.NewGetMaterialHandler(c.MaterialRepo)
	c.ListMaterials = queries.NewListMaterialsHandler(c.MaterialRepo)

	return c, nil
}

// connectCache uses Redis when REDIS_URL is set and reachable. Outside
// production an unusable Redis falls back to the in-process cache, whose
// entries expire after at most cache.MaxMemoryTTL.
func (c *Container) connectCache(ctx context.Context) (ProgressCache, error) {
	ttl := c.Config.ProgressCacheTTL
	if c.Config.RedisURL == "" {
		return cache.NewMemoryProgressCache(ttl), nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if c.Config.IsProduction() {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, progress cache will use in-memory fallback", "error", err)
		return cache.NewMemoryProgressCache(ttl), nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if c.Config.IsProduction() {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, progress cache will use in-memory fallback", "error", err)
		return cache.NewMemoryProgressCache(ttl), nil
	}

	c.RedisClient = client
	c.Logger.Info("connected to Redis")
	return cache.NewRedisProgressCache(client, ttl), nil
}

// NewPublisher connects to RabbitMQ behind a circuit breaker. Without a
// RABBITMQ_URL events are logged and dropped.
func (c *Container) NewPublisher() (eventbus.Publisher, error) {
	if c.Config.RabbitMQURL == "" {
		c.Logger.Warn("RABBITMQ_URL not set, using noop publisher")
		return eventbus.NewNoopPublisher(c.Logger), nil
	}
	rabbit, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, "", c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return eventbus.NewBreakerPublisher(rabbit, eventbus.DefaultBreakerConfig(), c.Logger), nil
}

// NewOutboxProcessor builds the relay that drains the outbox into publisher.
func (c *Container) NewOutboxProcessor(publisher eventbus.Publisher) *outbox.Processor {
	cfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		cfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		cfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		cfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	return outbox.NewProcessor(c.OutboxRepo, publisher, cfg, c.Logger, c.Metrics)
}

// HealthRegistry returns readiness probes for the configured dependencies.
// The database is critical; Redis only degrades the process.
func (c *Container) HealthRegistry() *observability.HealthRegistry {
	registry := observability.NewHealthRegistry(0)
	registry.Register("database", observability.PingChecker("database", true, c.DB.Ping))
	if c.RedisClient != nil {
		registry.Register("redis", observability.PingChecker("redis", false, func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}
	return registry
}

// Close releases the database and Redis connections.
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
