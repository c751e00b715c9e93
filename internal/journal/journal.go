package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on events(session_id, type)
const currentSchemaVersion = 1

// Journal is a SQLite-backed event journal. It records what a session
// applied so the session can be replayed later; the live measurement set
// never reads from it.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal database at path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (a crash may lose the last few events)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Open is idempotent.
func Open(path string) (*Journal, error) {
	// The driver creates the file on first use.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// sql.Open is lazy; Ping surfaces a bad path or permissions here.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite allows one writer at a time. A single pooled connection keeps
	// concurrent Append calls from tripping SQLITE_BUSY, and it keeps the
	// per-connection pragmas below in force.
	db.SetMaxOpenConns(1) // one writer
	db.SetMaxIdleConns(1) // reuse it between appends

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// OpenExisting opens a journal that must already exist on disk. Readers
// use it so that a mistyped path is an error instead of a new, empty
// journal.
func OpenExisting(path string) (*Journal, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal not found: %w", err)
	}
	return Open(path)
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// applyPragmas configures the connection. journal_mode persists in the
// file; the others are per-connection.
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

// applySchema creates the tables when missing, then brings an older
// journal up to currentSchemaVersion. Safe to run on every Open.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// Each step is idempotent, so a crash between a migration and the
	// user_version update only repeats the step.
	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the (session_id, type) index for per-session
// event-type lookups.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_session_type
		ON events(session_id, type)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// pragma reads a pragma value. Used by tests.
func (j *Journal) pragma(name string) (string, error) {
	var value string
	if err := j.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return value, nil
}
