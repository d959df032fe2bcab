package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/strefethen/crud-example/internal/platform/migrations"
	"github.com/strefethen/crud-example/internal/store"
)

// DefaultDocumentName is the row key used when none is given.
const DefaultDocumentName = "default"

// Backend implements store.Backend on a SQLite table.
type Backend struct {
	db   *sql.DB
	name string
}

var _ store.Backend = (*Backend)(nil)

// Open opens (creating if needed) the database file at path.
// When migrate is true the embedded schema is applied before returning.
func Open(ctx context.Context, path string, migrate bool, log *slog.Logger) (*Backend, error) {
	// WAL lets readers in other processes proceed during a save.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer connection avoids SQLITE_BUSY inside this process.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if migrate {
		if err := migrations.Up(ctx, db, migrations.DialectSQLite, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return New(db, DefaultDocumentName), nil
}

// New wraps an already open database. The documents table must exist.
func New(db *sql.DB, name string) *Backend {
	return &Backend{db: db, name: name}
}

// DB exposes the underlying handle, e.g. for running migrations.
func (b *Backend) DB() *sql.DB {
	return b.db
}

// Load returns the stored document body, or nil if no row exists yet.
func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE name = ?`, b.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %w", b.name, err)
	}
	return []byte(body), nil
}

// Save upserts the document row and bumps its revision.
func (b *Backend) Save(ctx context.Context, data []byte) error {
	return store.RunInTransaction(ctx, b.db, func(ctx context.Context, tx *sql.Tx) error {
		return saveDocument(ctx, tx, b.name, data, time.Now().UTC())
	})
}

func saveDocument(ctx context.Context, db store.DBTX, name string, data []byte, now time.Time) error {
	result, err := db.ExecContext(ctx,
		`UPDATE documents SET body = ?, revision = revision + 1, updated_at = ? WHERE name = ?`,
		string(data), now, name)
	if err != nil {
		return fmt.Errorf("failed to update document %q: %w", name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO documents (name, body, revision, updated_at) VALUES (?, ?, 1, ?)`,
		name, string(data), now); err != nil {
		return fmt.Errorf("failed to insert document %q: %w", name, err)
	}
	return nil
}

// Revision returns how many times the document has been saved.
func (b *Backend) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := b.db.QueryRowContext(ctx,
		`SELECT revision FROM documents WHERE name = ?`, b.name).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	return rev, nil
}

// Close closes the database handle.
func (b *Backend) Close() error {
	return b.db.Close()
}
