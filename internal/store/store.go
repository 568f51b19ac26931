package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/transition/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Fresh file, tables created but not seeded
// 1 - Seeded with app types and hosts
const currentSchemaVersion = 1

// ErrClosed is wrapped by every call made on a closed store.
var ErrClosed = errors.New("store is closed")

// Seed is the fixed content written once into a fresh store.
type Seed struct {
	AppTypes []model.AppType
	Hosts    []string
}

// Store is the single authoritative store for app types, hosts, apps and
// their host links. It owns one connection for its whole lifetime.
type Store struct {
	db     *sql.DB
	path   string
	seed   Seed
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates or opens the SQLite database at path.
//
// On first use the parent directory and all tables are created and the seed
// is written. Later opens leave existing rows alone. Failures to create or
// open the file are returned as *model.ResourceError.
func Open(path string, seed Seed, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		seed:   seed,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	s.db = db

	if err := s.seedOnce(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}

	s.logger.Debug("store opened", "path", path)
	return s, nil
}

// openDB opens the file, applies pragmas and creates the schema.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &model.ResourceError{Op: "create store dir", Path: dir, Err: err}
		}
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &model.ResourceError{Op: "open store", Path: path, Err: err}
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &model.ResourceError{Op: "open store", Path: path, Err: err}
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// conn returns the open handle, or a *model.ResourceError wrapping
// ErrClosed when the store was closed or a Reset failed.
func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, &model.ResourceError{Op: "use store", Path: s.path, Err: ErrClosed}
	}
	return s.db, nil
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Reset tears the store down and recreates it from the seed.
// The backing file and its WAL side files are deleted. If recreating
// fails the store stays closed and later calls return ErrClosed.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("reset: close: %w", err)
	}

	for _, suffix := range []string{"", "-wal", "-shm"} {
		p := s.path + suffix
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &model.ResourceError{Op: "remove store", Path: p, Err: err}
		}
	}

	db, err := openDB(s.path)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.db = db

	if err := s.seedOnce(ctx); err != nil {
		s.Close()
		return fmt.Errorf("reset: %w", err)
	}
	s.logger.Info("store reset", "path", s.path)
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// seedOnce writes the seed if user_version says it has not been written.
func (s *Store) seedOnce(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return s.checkSeedDrift(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, at := range s.seed.AppTypes {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO app_type (name, path) VALUES (?, ?)`,
			at.Name, at.Path,
		); err != nil {
			return fmt.Errorf("seed app type %q: %w", at.Name, err)
		}
	}
	for _, host := range model.HostNames(s.seed.Hosts) {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO com_app (short_name) VALUES (?)`,
			host,
		); err != nil {
			return fmt.Errorf("seed host %q: %w", host, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.logger.Debug("store seeded", "app_types", len(s.seed.AppTypes), "hosts", len(s.seed.Hosts))
	return nil
}

// checkSeedDrift warns when the configured seed names app types or hosts
// the seeded store lacks, or gives an app type another root. Those
// changes only take effect after Reset.
func (s *Store) checkSeedDrift(ctx context.Context) error {
	types, err := s.AppTypes(ctx)
	if err != nil {
		return err
	}
	stored := make(map[string]string, len(types))
	for _, at := range types {
		stored[at.Name] = at.Path
	}
	for _, at := range s.seed.AppTypes {
		path, ok := stored[at.Name]
		switch {
		case !ok:
			s.logger.Warn("configured app type missing from store; reset to apply", "app_type", at.Name, "path", s.path)
		case path != at.Path:
			s.logger.Warn("configured app type root differs from store; reset to apply",
				"app_type", at.Name, "configured", at.Path, "stored", path)
		}
	}

	for _, host := range model.HostNames(s.seed.Hosts) {
		ok, err := s.HasHostApp(ctx, host)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("configured host missing from store; reset to apply", "host", host, "path", s.path)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
