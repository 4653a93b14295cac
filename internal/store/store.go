// Package store implements persistence for storykeeper.
//
// It uses SQLite (modernc.org/sqlite, no cgo) to hold the series registry
// (series, books, chapters, characters) and the character knowledge ledger.
// Store satisfies knowledge.Ledger and knowledge.Registry.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir      string
	DatabaseFile string
}

// DefaultConfig returns the default configuration for the store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:      filepath.Join(home, ".storykeeper"),
		DatabaseFile: "storykeeper.db",
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed registry and knowledge ledger.
type Store struct {
	db    *sql.DB
	cfg   Config
	hooks storeHooks
}

type storeHooks struct {
	beginTx func(ctx context.Context, db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		beginTx: func(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
			return db.BeginTx(ctx, nil)
		},
		commit: func(tx *sql.Tx) error {
			return tx.Commit()
		},
	}
}

func (s *Store) beginTxHook(ctx context.Context) (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(ctx, s.db)
	}
	return s.db.BeginTx(ctx, nil)
}

func (s *Store) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// New creates a Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = DefaultConfig().DatabaseFile
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, cfg.DatabaseFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite performance pragmas. foreign_keys is per connection, so the
	// pool is pinned to one connection; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, hooks: defaultStoreHooks()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.cfg.DataDir, s.cfg.DatabaseFile)
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS series (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			description TEXT,
			created_at  TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS books (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			series_id   INTEGER NOT NULL,
			title       TEXT    NOT NULL,
			book_number INTEGER NOT NULL,
			created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (series_id) REFERENCES series(id),
			UNIQUE (series_id, book_number)
		);

		CREATE TABLE IF NOT EXISTS chapters (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			book_id        INTEGER NOT NULL,
			chapter_number INTEGER NOT NULL,
			title          TEXT,
			created_at     TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (book_id) REFERENCES books(id),
			UNIQUE (book_id, chapter_number)
		);

		CREATE TABLE IF NOT EXISTS characters (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			series_id   INTEGER NOT NULL,
			name        TEXT    NOT NULL,
			description TEXT,
			created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (series_id) REFERENCES series(id)
		);

		CREATE INDEX IF NOT EXISTS idx_books_series      ON books(series_id);
		CREATE INDEX IF NOT EXISTS idx_chapters_book     ON chapters(book_id);
		CREATE INDEX IF NOT EXISTS idx_characters_series ON characters(series_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Knowledge ledger. The unique index is the upsert identity: one fact per
	// (character, item, book, chapter).
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS character_knowledge_states (
			id                       INTEGER PRIMARY KEY AUTOINCREMENT,
			character_id             INTEGER NOT NULL,
			book_id                  INTEGER NOT NULL,
			chapter_id               INTEGER NOT NULL,
			knowledge_item           TEXT    NOT NULL,
			knowledge_state          TEXT    NOT NULL,
			source                   TEXT,
			confidence_level         TEXT,
			can_act_on               INTEGER NOT NULL DEFAULT 1,
			can_reference_directly   INTEGER NOT NULL DEFAULT 1,
			can_reference_indirectly INTEGER NOT NULL DEFAULT 1,
			internal_thought_ok      INTEGER NOT NULL DEFAULT 1,
			restrictions             TEXT,
			dialogue_restriction     TEXT,
			revision_count           INTEGER NOT NULL DEFAULT 1,
			created_at               TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at               TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (character_id) REFERENCES characters(id),
			FOREIGN KEY (book_id)      REFERENCES books(id),
			FOREIGN KEY (chapter_id)   REFERENCES chapters(id)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_cks_identity
			ON character_knowledge_states(character_id, knowledge_item, book_id, chapter_id);
		CREATE INDEX IF NOT EXISTS idx_cks_character ON character_knowledge_states(character_id);
	`); err != nil {
		return err
	}

	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// nullableString converts empty strings to NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
