package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

// TableName is the goose version table used by every dialect.
const TableName = "schema_migrations"

// Supported dialects. Each has a directory of the same name in the embedded FS.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// slogGooseLogger adapts the goose logger interface to use slog.
type slogGooseLogger struct {
	log *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. It does not exit; the error reaches the caller
// through the goose return value.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func dir(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "postgres", nil
	case DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported migration dialect: %s", dialect)
	}
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB, dialect string, log *slog.Logger) error {
	return Run(ctx, db, dialect, "up", log)
}

// Run executes a goose command (up, down, status, version or reset) against db.
func Run(ctx context.Context, db *sql.DB, dialect, command string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "migrations", "dialect", dialect, "command", command)

	migrationsDir, err := dir(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&slogGooseLogger{log: log})
	goose.SetTableName(TableName)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, migrationsDir)
	case "version":
		err = goose.VersionContext(ctx, db, migrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, db, migrationsDir)
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, status, version, or reset)",
			command,
		)
	}
	if err != nil {
		log.Error("migration command failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration command completed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Version returns the current schema version recorded by goose.
func Version(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetTableName(TableName)
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
