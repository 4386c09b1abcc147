package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	"library-backend/internal/domains/author"
	authorRepo "library-backend/internal/domains/author/repository"
	"library-backend/internal/domains/book"
	bookRepo "library-backend/internal/domains/book/repository"
	catalogGraphQL "library-backend/internal/domains/catalog/graphql"
	catalogService "library-backend/internal/domains/catalog/service"
	"library-backend/internal/domains/user"
	"library-backend/internal/domains/user/job"
	userRepo "library-backend/internal/domains/user/repository"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/memstore"
	"library-backend/internal/infrastructure/notifier"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Fields are populated in
// order: config, infrastructure, repositories, services, handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB    // nil with the memory store
	Redis       *infraCache.RedisClient // nil when REDIS_ENABLED=false
	Cache       cache.Cache             // nil when REDIS_ENABLED=false
	AsynqClient *asynq.Client           // nil when REDIS_ENABLED=false
	JWTManager  *jwt.Manager

	Hub    *notifier.Hub
	Bridge *notifier.RedisBridge // nil when REDIS_ENABLED=false

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	AuthorRepo author.Repository
	BookRepo   book.Repository
	UserRepo   user.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	LoginGuard     user.LoginGuard
	CatalogService *catalogService.Service

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	GraphQLHandler *catalogGraphQL.Handler
	SSEHandler     *notifier.SSEHandler
}

// NewContainer builds the whole graph from the environment.
func NewContainer(ctx context.Context) (*Container, error) {
	log.Info().Msg("Initializing DI container")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	c := &Container{Config: cfg}

	if err := c.initStore(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	c.initNotifier()

	if err := c.initServices(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	c.initHandlers()

	log.Info().
		Str("store", cfg.Store.Driver).
		Bool("redis", cfg.Redis.Enabled).
		Msg("DI container initialized")
	return c, nil
}

// NewWorkerContainer builds only what cmd/worker needs: config and the
// redis-backed cache. Redis is mandatory there.
func NewWorkerContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Redis.Enabled {
		return nil, fmt.Errorf("worker requires REDIS_ENABLED=true")
	}

	c := &Container{Config: cfg}
	if err := c.initRedis(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStore(ctx context.Context) error {
	switch c.Config.Store.Driver {
	case config.StoreDriverMemory:
		store := memstore.New()
		if c.Config.Store.SeedDemo {
			if err := store.SeedDemo(ctx); err != nil {
				return fmt.Errorf("seed demo catalog: %w", err)
			}
			log.Info().Msg("Demo catalog loaded into memory store")
		}
		c.AuthorRepo = store.Authors()
		c.BookRepo = store.Books()
		c.UserRepo = store.Users()
		return nil

	default:
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		db := database.NewPostgresDB(dbConfig)

		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := db.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		if err := db.Migrate(connectCtx); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}

		c.AuthorRepo = authorRepo.NewPostgresRepository(db.Pool)
		c.BookRepo = bookRepo.NewPostgresRepository(db.Pool)
		c.UserRepo = userRepo.NewPostgresRepository(db.Pool)
		return nil
	}
}

func (c *Container) initRedis(ctx context.Context) error {
	if !c.Config.Redis.Enabled {
		log.Warn().Msg("Redis disabled: failed-login lockout off, notifier is process-local")
		return nil
	}

	rc := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		return err
	}
	c.Redis = rc
	c.Cache = infraCache.NewRedisCache(rc.Client)
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	return nil
}

func (c *Container) initNotifier() {
	c.Hub = notifier.NewHub(c.Config.Notifier.SubscriberBuffer)
	if c.Redis != nil {
		c.Bridge = notifier.NewRedisBridge(c.Redis.Client, c.Config.Notifier.Channel, c.Hub)
	}
}

// Publisher is the redis bridge when available, else the local hub.
func (c *Container) Publisher() notifier.Publisher {
	if c.Bridge != nil {
		return c.Bridge
	}
	return c.Hub
}

func (c *Container) initServices() error {
	if c.Cache != nil && c.AsynqClient != nil {
		c.LoginGuard = job.NewAsynqGuard(c.Cache, c.AsynqClient)
	} else {
		c.LoginGuard = job.NoopGuard{}
	}

	svc, err := catalogService.NewService(catalogService.Deps{
		Authors:   c.AuthorRepo,
		Books:     c.BookRepo,
		Users:     c.UserRepo,
		Publisher: c.Publisher(),
		Guard:     c.LoginGuard,
		Tokens:    c.JWTManager,
	}, c.Config.Auth.SharedPassword)
	if err != nil {
		return err
	}
	c.CatalogService = svc
	return nil
}

func (c *Container) initHandlers() {
	c.GraphQLHandler = catalogGraphQL.NewHandler(catalogGraphQL.NewSchema(c.CatalogService))
	c.SSEHandler = notifier.NewSSEHandler(c.Hub, c.Config.Notifier.Heartbeat)
}

// LockoutPolicy maps the auth config onto the failed-login job policy.
func (c *Container) LockoutPolicy() job.Policy {
	return job.Policy{
		MaxFailedAttempts: c.Config.Auth.MaxFailedAttempts,
		AttemptWindow:     c.Config.Auth.AttemptWindow,
		LockoutDuration:   c.Config.Auth.LockoutDuration,
	}
}

// Cleanup releases resources on shutdown. Safe on a partially built container.
func (c *Container) Cleanup() {
	if c.Hub != nil {
		c.Hub.Close()
	}

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("Container cleanup completed")
}
