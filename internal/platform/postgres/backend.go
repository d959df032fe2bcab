package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/strefethen/crud-example/internal/platform/logger"
	"github.com/strefethen/crud-example/internal/platform/migrations"
	"github.com/strefethen/crud-example/internal/store"
)

// DefaultDocumentName is the row key used when none is given.
const DefaultDocumentName = "default"

// Backend implements store.Backend on the documents table.
type Backend struct {
	db   *sql.DB
	name string
	// lockKey is the advisory lock taken for the duration of each save.
	lockKey int64
}

var _ store.Backend = (*Backend)(nil)

// Open connects to databaseURL and verifies the connection.
// When migrate is true the embedded schema is applied before returning.
func Open(ctx context.Context, databaseURL string, migrate bool, log *slog.Logger) (*Backend, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if migrate {
		if err := migrations.Up(ctx, db, migrations.DialectPostgres, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return New(db, DefaultDocumentName), nil
}

// New wraps an already open database. The documents table must exist.
func New(db *sql.DB, name string) *Backend {
	h := fnv.New64a()
	_, _ = h.Write([]byte("documents:" + name))
	return &Backend{db: db, name: name, lockKey: int64(h.Sum64())}
}

// DB exposes the underlying handle, e.g. for running migrations.
func (b *Backend) DB() *sql.DB {
	return b.db
}

// Load returns the stored document body, or nil if no row exists yet.
func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE name = $1`, b.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to load document",
			"document", b.name,
			"error", err)
		return nil, fmt.Errorf("failed to load document %q: %w", b.name, err)
	}
	return body, nil
}

// Save upserts the document row. Concurrent savers in other processes are
// serialised by a transaction-scoped advisory lock.
func (b *Backend) Save(ctx context.Context, data []byte) error {
	return store.RunInTransaction(ctx, b.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, b.lockKey); err != nil {
			return fmt.Errorf("failed to acquire document lock: %w", err)
		}
		return saveDocument(ctx, tx, b.name, data)
	})
}

func saveDocument(ctx context.Context, db store.DBTX, name string, data []byte) error {
	query := `
		INSERT INTO documents (name, body, revision, updated_at)
		VALUES ($1, $2::jsonb, 1, $3)
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body,
		    revision = documents.revision + 1,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := db.ExecContext(ctx, query, name, string(data), time.Now().UTC()); err != nil {
		logger.FromContext(ctx).Error("failed to save document",
			"document", name,
			"bytes", len(data),
			"error", err)
		return fmt.Errorf("failed to save document %q: %w", name, err)
	}
	return nil
}

// Revision returns how many times the document has been saved.
func (b *Backend) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := b.db.QueryRowContext(ctx,
		`SELECT revision FROM documents WHERE name = $1`, b.name).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	return rev, nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	return b.db.Close()
}
