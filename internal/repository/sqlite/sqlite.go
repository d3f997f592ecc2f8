// Package sqlite implements the repository interfaces on SQLite.
//
// We use modernc.org/sqlite — a pure-Go translation of SQLite — so the
// binary cross-compiles without a C toolchain. The database is a single
// file (or ":memory:" in tests).
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces (UserRepository, CardRepository, GenerationStore, ...).
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and runs migrations.
//
// The pool is capped at a single connection. SQLite allows one writer at a
// time; funneling everything through one connection means transactions are
// fully serialized and the generation transaction's isolation requirement
// (two concurrent generations for the same user must not interleave) holds
// without SQLITE_BUSY retry loops.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write transaction is open.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; cards, preferences, and
	// ledger entries all reference users, so we want referential integrity.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent — safe to run on every startup.
func (db *DB) migrate() error {
	// Users. email is unique only when non-empty (GitHub accounts may hide
	// their email, and two hidden emails must not collide). github_id is
	// unique only when linked.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id               TEXT PRIMARY KEY,
			email            TEXT NOT NULL DEFAULT '',
			display_name     TEXT NOT NULL DEFAULT '',
			password_hash    TEXT NOT NULL DEFAULT '',
			github_id        INTEGER NOT NULL DEFAULT 0,
			avatar_url       TEXT NOT NULL DEFAULT '',
			coin_balance     INTEGER NOT NULL DEFAULT 0 CHECK (coin_balance >= 0),
			is_admin         INTEGER NOT NULL DEFAULT 0,
			last_daily_claim DATETIME,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
			ON users(email) WHERE email != '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Cards. UNIQUE(user_id, combination_key) is the final backstop for the
	// central uniqueness invariant — even if every in-code check raced, the
	// schema refuses a second card for the same pair.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cards (
			id                 TEXT PRIMARY KEY,
			user_id            TEXT NOT NULL REFERENCES users(id),
			combination_key    TEXT NOT NULL,
			title              TEXT NOT NULL DEFAULT '',
			subtitle           TEXT NOT NULL DEFAULT '',
			industry           TEXT NOT NULL DEFAULT '',
			problem            TEXT NOT NULL DEFAULT '',
			solution           TEXT NOT NULL DEFAULT '',
			implementation     TEXT NOT NULL DEFAULT '',
			market_opportunity TEXT NOT NULL DEFAULT '',
			summary            TEXT NOT NULL DEFAULT '',
			rating             REAL NOT NULL DEFAULT 0,
			feasibility        TEXT NOT NULL DEFAULT '',
			complexity         TEXT NOT NULL DEFAULT '',
			rarity             TEXT NOT NULL DEFAULT '',
			pinned             INTEGER NOT NULL DEFAULT 0,
			saved              INTEGER NOT NULL DEFAULT 0,
			favorited          INTEGER NOT NULL DEFAULT 0,
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, combination_key)
		);
		CREATE INDEX IF NOT EXISTS idx_cards_user_id ON cards(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating cards table: %w", err)
	}

	// Preferences. The composite primary key gives us the "at most one kind
	// per (user, api)" invariant for free — Set uses ON CONFLICT to replace
	// the kind.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			user_id    TEXT NOT NULL REFERENCES users(id),
			api_name   TEXT NOT NULL,
			kind       TEXT NOT NULL CHECK (kind IN ('locked', 'ignored')),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, api_name)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating preferences table: %w", err)
	}

	// Coin ledger — append only. No UPDATE or DELETE ever touches this
	// table.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS coin_ledger (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			amount      INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			card_id     TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_coin_ledger_user_id ON coin_ledger(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating coin_ledger table: %w", err)
	}

	return nil
}
