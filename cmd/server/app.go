package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/strefethen/crud-example/internal/api"
	"github.com/strefethen/crud-example/internal/config"
	"github.com/strefethen/crud-example/internal/events"
	"github.com/strefethen/crud-example/internal/platform/jsonfile"
	"github.com/strefethen/crud-example/internal/platform/postgres"
	"github.com/strefethen/crud-example/internal/platform/sqlite"
	"github.com/strefethen/crud-example/internal/redact"
	"github.com/strefethen/crud-example/internal/service"
	"github.com/strefethen/crud-example/internal/service/auth"
	"github.com/strefethen/crud-example/internal/store"
	"github.com/strefethen/crud-example/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	backend store.Backend
	store   *store.DocumentStore
	watcher *jsonfile.Watcher

	emitter   *events.InMemoryEventEmitter
	scheduler *task.Scheduler

	itemService service.ItemService
	taskService service.TaskService
	jwtService  auth.JWTService

	router *api.Router

	// onListen, when set, receives the bound address once the server listens.
	onListen func(net.Addr)
}

// openBackend creates the document backend selected by cfg.Driver.
func openBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryBackend(), nil
	case config.DriverFile:
		return jsonfile.NewBackend(cfg.Path), nil
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Path, cfg.AutoMigrate, logger)
	case config.DriverPostgres:
		logger.Info("connecting to postgres", "url", redact.DatabaseURL(cfg.URL))
		return postgres.Open(ctx, cfg.URL, cfg.AutoMigrate, logger)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// newApplication creates a new application instance with all dependencies
// initialized. Pending tasks left over from a previous run are re-armed.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.backend, err = openBackend(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("document store opened", "driver", cfg.Store.Driver)

	app.store, err = store.New(app.backend, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.scheduler = task.NewScheduler(app.store, task.SchedulerConfig{
		DefaultDelay: cfg.Task.DefaultDelay,
	}, logger, app.emitter)

	app.itemService, err = service.NewItemService(app.store, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create item service: %w", err)
	}
	app.taskService, err = service.NewTaskService(app.store, app.scheduler, service.TaskServiceConfig{
		DefaultDelay: cfg.Task.DefaultDelay,
		Collection:   cfg.Task.Collection,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	if cfg.Auth.Enabled {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("session authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	}

	recovered, err := app.scheduler.Recover(ctx)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to recover pending tasks: %w", err)
	}
	logger.Info("pending tasks re-armed", "count", recovered)

	if fileBackend, ok := app.backend.(*jsonfile.Backend); ok {
		app.watcher, err = jsonfile.NewWatcher(fileBackend, app.onExternalChange, logger)
		if err != nil {
			// Serving still works without the watcher; hand edits are just
			// picked up on the next restart.
			logger.Warn("document watcher unavailable", "error", redact.Error(err))
		} else {
			logger.Info("watching document for external edits", "path", fileBackend.Path())
		}
	}

	app.router = api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Items:       app.itemService,
		Tasks:       app.taskService,
		Events:      app.emitter,
		CORSOrigins: cfg.Server.CORSOrigins,
		JWT:         app.jwtService,
	})

	logger.Info("Application initialized successfully")
	return app, nil
}

// onExternalChange arms tasks that were added to the document by hand.
func (app *application) onExternalChange() {
	n, err := app.scheduler.Recover(context.Background())
	if err != nil {
		app.logger.Error("failed to re-arm tasks after external edit", "error", redact.Error(err))
		return
	}
	app.logger.Info("re-armed tasks after external edit", "count", n)
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	if app.watcher != nil {
		app.watcher.Start(ctx)
	}
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
// Timers stop before the backend closes so no completion writes to a closed store.
func (app *application) cleanup() {
	if app.router != nil {
		app.router.Close()
	}
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.logger.Error("Error closing document watcher", "error", redact.Error(err))
		}
	}
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Error("Error closing document store", "error", redact.Error(err))
		}
	} else if app.backend != nil {
		if err := app.backend.Close(); err != nil {
			app.logger.Error("Error closing store backend", "error", redact.Error(err))
		}
	}

	app.logger.Info("Application shutdown completed")
}
