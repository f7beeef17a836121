package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sundayezeilo/readit/internal/actions"
	"github.com/sundayezeilo/readit/internal/auth"
	"github.com/sundayezeilo/readit/internal/categories"
	"github.com/sundayezeilo/readit/internal/config"
	"github.com/sundayezeilo/readit/internal/db/migrations"
	db "github.com/sundayezeilo/readit/internal/db/sqlc"
	"github.com/sundayezeilo/readit/internal/invalidate"
	"github.com/sundayezeilo/readit/internal/links"
	"github.com/sundayezeilo/readit/internal/server"
	"github.com/sundayezeilo/readit/internal/telemetry"
	"github.com/sundayezeilo/readit/internal/titlefetch"
)

// App holds the application dependencies and configuration.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DBPool *pgxpool.Pool
	Redis  *redis.Client
	Server *server.Server

	shutdownTracing telemetry.ShutdownFunc
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := NewLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"version", cfg.Observability.ServiceVersion,
	)

	a := &App{Config: cfg, Logger: logger}

	a.shutdownTracing, err = telemetry.Setup(ctx, cfg.Observability, cfg.App.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	a.DBPool, err = ConnectDatabase(ctx, cfg, logger)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.MigrateOnStart {
		if _, err := migrations.Apply(ctx, a.DBPool, logger); err != nil {
			a.Shutdown()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	notifier, err := a.setupNotifier(ctx)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.Server, err = NewServer(cfg, logger, a.DBPool, notifier)
	if err != nil {
		a.Shutdown()
		return nil, err
	}

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"tracing", cfg.Observability.Enabled,
		"redis_invalidation", a.Redis != nil,
	)

	return a, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting",
		"port", a.Config.Server.Port,
		"base_url", a.Config.Server.BaseURL,
	)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown releases every resource New acquired. It is safe to call on a
// partially initialized App.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", "error", err.Error())
		}
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil {
			return fmt.Errorf("failed to flush traces: %w", err)
		}
	}

	return nil
}

// NewServer wires the stores, procedures and handlers over pool and returns
// the HTTP server.
func NewServer(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, notifier invalidate.Notifier) (*server.Server, error) {
	resolver, err := auth.NewJWTResolver(auth.Config{
		Secret:     cfg.Auth.JWTSecret,
		CookieName: cfg.Auth.CookieName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up auth: %w", err)
	}

	queries := db.New(pool)

	titles := titlefetch.New(titlefetch.Config{
		SiteURL:  cfg.Server.BaseURL,
		Timeout:  cfg.TitleFetch.Timeout,
		MaxBytes: cfg.TitleFetch.MaxBytes,
		Logger:   logger,
	})

	linkSvc := links.NewService(links.NewRepository(queries, nil), &links.ServiceConfig{TitleResolver: titles})
	categorySvc := categories.NewService(categories.NewRepository(queries, nil), nil)

	procs := actions.New(actions.Config{
		Links:      linkSvc,
		Categories: categorySvc,
		Notifier:   notifier,
		Logger:     logger,
	})

	return server.New(cfg, logger, server.Deps{
		Links:      links.NewHandler(links.HandlerConfig{Service: linkSvc, Logger: logger}),
		Categories: categories.NewHandler(categories.HandlerConfig{Service: categorySvc, Logger: logger}),
		Actions: actions.NewFormHandler(actions.FormHandlerConfig{
			Procedures: procs,
			Session:    resolver,
			LoginURL:   cfg.Auth.LoginURL,
			Logger:     logger,
		}),
		Auth: resolver,
		DB:   pool,
	}), nil
}

// setupNotifier publishes invalidations to Redis when REDIS_URL is set and
// logs them otherwise.
func (a *App) setupNotifier(ctx context.Context) (invalidate.Notifier, error) {
	if a.Config.Invalidation.RedisURL == "" {
		return invalidate.NewLogNotifier(a.Logger), nil
	}

	client, err := invalidate.NewRedisClient(ctx, a.Config.Invalidation.RedisURL)
	if err != nil {
		return nil, err
	}
	a.Redis = client

	return invalidate.NewRedisNotifier(invalidate.RedisConfig{
		Publisher: client,
		Channel:   a.Config.Invalidation.Channel,
		Logger:    a.Logger,
	}), nil
}

// LoadEnv loads .env file only in non-production environments.
func LoadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// NewLogger creates a structured logger based on the log level.
func NewLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConnectDatabase establishes a connection to the PostgreSQL database. Queries
// are traced when observability is enabled.
func ConnectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	if cfg.Observability.Enabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}
