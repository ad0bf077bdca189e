package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/platform/postgres"
	"github.com/phrazzld/taskapi/internal/platform/redisq"
	"github.com/phrazzld/taskapi/internal/service/auth"
	"github.com/phrazzld/taskapi/internal/task"
)

// backend is a task.Dispatcher that can report its own reachability.
type backend interface {
	task.Dispatcher
	Ping(ctx context.Context) error
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	registry   *task.Registry
	dispatcher backend
	jwtService auth.JWTService // nil when auth is disabled

	db     *sql.DB
	runner *task.Runner
	client *redisq.Client
}

// newApplication creates a new application instance with all dependencies
// initialized for the configured backend.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.registry, err = task.NewDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to register tasks: %w", err)
	}

	if cfg.Auth.Enabled() {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication enabled for task routes",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	}

	if err := app.setupDispatcher(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("Application initialized successfully",
		"backend", cfg.Broker.Backend,
		"tasks", app.registry.Names())
	return app, nil
}

// setupDispatcher builds the dispatcher selected by broker.backend.
func (app *application) setupDispatcher(ctx context.Context) error {
	cfg := app.config

	switch cfg.Broker.Backend {
	case config.BackendRedis:
		client, err := redisq.NewClient(redisq.ClientConfig{
			Conn:            brokerConn(cfg.Broker),
			Queue:           cfg.Broker.Queue,
			MaxRetry:        cfg.Broker.MaxRetry,
			ResultRetention: cfg.Broker.ResultRetention,
			SubmitTimeout:   cfg.Broker.SubmitTimeout,
		}, app.registry, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create broker client: %w", err)
		}
		app.client = client
		app.dispatcher = client
		return nil

	case config.BackendPostgres:
		db, err := setupAppDatabase(ctx, cfg.Database.URL, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		return app.setupTaskRunner(postgres.NewTaskStore(db))

	case config.BackendMemory:
		return app.setupTaskRunner(task.NewMemoryStore())

	default:
		return fmt.Errorf("unsupported broker backend %q", cfg.Broker.Backend)
	}
}

// setupTaskRunner initializes and starts the in-process task runner.
func (app *application) setupTaskRunner(store task.Store) error {
	runner := task.NewRunner(store, app.registry, task.RunnerConfig{
		Backend:      app.config.Broker.Backend,
		WorkerCount:  app.config.Task.WorkerCount,
		QueueSize:    app.config.Task.QueueSize,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	if err := runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	app.runner = runner
	app.dispatcher = runner
	return nil
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases backend resources. It is safe to call on a partially
// initialized application.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}

	if app.client != nil {
		if err := app.client.Close(); err != nil {
			app.logger.Error("Error closing broker client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

func brokerConn(b config.BrokerConfig) redisq.ConnConfig {
	return redisq.ConnConfig{
		URL:          b.URL,
		DialTimeout:  b.DialTimeout,
		ReadTimeout:  b.ReadTimeout,
		WriteTimeout: b.WriteTimeout,
	}
}
