// Package store is the embedded, durable, transactional row store behind
// the catalog sync engine: a fixed relational schema, foreign-key and
// cascade discipline, idempotent upserts, and the lookups the application
// needs, per spec §4.2.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config mirrors the teacher's infrastructure.Config shape, narrowed to
// what a single embedded SQLite file needs (§6.3): journal_mode=WAL,
// synchronous=NORMAL, foreign_keys on, busy_timeout=30s.
type Config struct {
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
	Logger       *slog.Logger
}

// DefaultConfig returns the spec's pragma defaults for a given file path.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		BusyTimeout:  30 * time.Second,
		MaxOpenConns: 1, // single-writer discipline (spec §4.2/§5)
	}
}

// Store owns one SQLite connection pool. With the default MaxOpenConns of
// 1 every statement, read or write, runs on that single connection, so
// readers are serialized along with the writer; a larger MaxOpenConns
// lets reads run on separate connections.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the schema if absent and returns a ready Store, per
// spec §4.2's `open(path) -> Store` contract.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	busyMs := int(cfg.BusyTimeout / time.Millisecond)
	if busyMs <= 0 {
		busyMs = 30000
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, busyMs)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		logger.Warn("failed to enable WAL journal mode", "error", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous=NORMAL"); err != nil {
		logger.Warn("failed to set synchronous=NORMAL", "error", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite store: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("catalog store opened", "path", path)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx wraps a single in-flight transaction, per spec §4.2: any write must
// be inside a Tx, and it must commit or roll back on every exit path
// including cancellation and panic/unwind.
type Tx struct {
	tx *sql.Tx
}

// execer is satisfied by both *sql.DB and *sql.Tx, letting every per-kind
// accessor below run either directly against the store or inside a
// caller-supplied transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn resolves the executor for an optional transaction: nil runs
// directly against the store's pool (used for read-only lookups outside
// any batch), non-nil runs inside the caller's transaction.
func (s *Store) conn(tx *Tx) execer {
	if tx != nil {
		return tx.tx
	}
	return s.db
}

// Begin starts a new transaction, per spec §4.2's `begin() -> Tx`.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits tx, per spec §4.2's `commit(tx)`.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback aborts tx. Safe to call after a successful Commit (no-op).
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

// WithTx runs fn inside a new transaction, committing on success and
// rolling back on any error or panic — the Go idiom for "commit or roll
// back on every exit path" that the teacher's lock/config layers express
// with defer-based release.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}
