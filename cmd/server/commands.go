package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/strefethen/crud-example/internal/config"
	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/platform/logger"
	"github.com/strefethen/crud-example/internal/platform/migrations"
	"github.com/strefethen/crud-example/internal/platform/postgres"
	"github.com/strefethen/crud-example/internal/platform/sqlite"
	"github.com/strefethen/crud-example/internal/redact"
	"github.com/strefethen/crud-example/internal/service"
	"github.com/strefethen/crud-example/internal/store"
)

func setup(flags *Flags) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store_driver", cfg.Store.Driver,
		"auth_enabled", cfg.Auth.Enabled)
	return cfg, log, nil
}

func newServeCmd(flags *Flags) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Description: `Opens the configured store, re-arms tasks that were still pending when
the server last stopped and serves the API until SIGINT or SIGTERM.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := setup(flags)
			if err != nil {
				return err
			}

			app, err := newApplication(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %s", redact.Error(err))
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd(flags *Flags, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Manage the schema of the SQL store drivers",
		UsageText: "crud-example migrate [up|down|status|version|reset]",
		Description: `Runs goose against the database configured under store. Only the
postgres and sqlite drivers have a schema; the command defaults to up.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			command := c.Args().First()
			if command == "" {
				command = "up"
			}

			cfg, log, err := setup(flags)
			if err != nil {
				return err
			}
			return runMigrations(ctx, cfg.Store, command, log, out)
		},
	}
}

// runMigrations opens the SQL backend without auto-migrating and runs command.
func runMigrations(ctx context.Context, cfg config.StoreConfig, command string, log *slog.Logger, out io.Writer) error {
	var (
		backend interface {
			Close() error
			DB() *sql.DB
		}
		dialect string
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		log.Info("connecting to postgres", "url", redact.DatabaseURL(cfg.URL))
		b, err := postgres.Open(ctx, cfg.URL, false, log)
		if err != nil {
			return fmt.Errorf("failed to open database: %s", redact.Error(err))
		}
		backend, dialect = b, migrations.DialectPostgres
	case config.DriverSQLite:
		b, err := sqlite.Open(ctx, cfg.Path, false, log)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		backend, dialect = b, migrations.DialectSQLite
	default:
		return fmt.Errorf("store driver %q has no schema to migrate", cfg.Driver)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("failed to close database", "error", redact.Error(err))
		}
	}()

	if err := migrations.Run(ctx, backend.DB(), dialect, command, log); err != nil {
		return err
	}

	version, err := migrations.Version(ctx, backend.DB(), dialect)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	_, err = fmt.Fprintf(out, "schema version: %d\n", version)
	return err
}

// seedFile is the YAML layout read by the seed command.
type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       *float64 `yaml:"price"`
}

func newSeedCmd(flags *Flags, out io.Writer) *cli.Command {
	var path string
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load items from a YAML file into the configured store",
		UsageText: "crud-example seed --file items.yaml",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "YAML file with an items list",
				Required:    true,
				Destination: &path,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := setup(flags)
			if err != nil {
				return err
			}

			backend, err := openBackend(ctx, cfg.Store, log)
			if err != nil {
				return fmt.Errorf("failed to open %s store: %s", cfg.Store.Driver, redact.Error(err))
			}
			docs, err := store.New(backend, log)
			if err != nil {
				_ = backend.Close()
				return err
			}
			defer func() { _ = docs.Close() }()

			items, err := service.NewItemService(docs, log)
			if err != nil {
				return err
			}

			n, err := seedItems(ctx, items, path)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "seeded %d item(s)\n", n)
			return err
		},
	}
}

// seedItems creates every item listed in the YAML file at path. Items are
// validated like API input; the first invalid entry stops the run.
func seedItems(ctx context.Context, items service.ItemService, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(file.Items) == 0 {
		return 0, errors.New("seed file lists no items")
	}

	for i, it := range file.Items {
		_, err := items.CreateItem(ctx, domain.ItemInput{
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
		})
		if err != nil {
			return i, fmt.Errorf("item %d (%q): %w", i+1, it.Name, err)
		}
	}
	return len(file.Items), nil
}
