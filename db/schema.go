// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the configured database and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if dbType == TypeSQLite {
		// One writer at a time; transactions queue on the pool instead of
		// failing with SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure from either driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}

// Both PostgreSQL and SQLite accept this dialect.
const schema = `
-- Positions
CREATE TABLE IF NOT EXISTS position (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    allow_abstain BOOLEAN NOT NULL DEFAULT TRUE,
    ordinal INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_position_ordinal ON position(ordinal);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    position_id TEXT NOT NULL REFERENCES position(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    platform TEXT NOT NULL DEFAULT '',
    photo TEXT NOT NULL DEFAULT '',
    ordinal INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_position_id ON candidate(position_id);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    role TEXT NOT NULL DEFAULT 'voter' CHECK (role IN ('voter', 'admin')),
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMP NOT NULL,
    voted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voter_has_voted ON voter(has_voted);

-- Ballots (append-only; choice is not a foreign key so removed
-- candidates leave their ballots in place)
CREATE TABLE IF NOT EXISTS ballot (
    voter_id TEXT NOT NULL REFERENCES voter(id),
    position_id TEXT NOT NULL,
    choice TEXT NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    PRIMARY KEY (voter_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_position_choice ON ballot(position_id, choice);

-- Receipts (one issuance per voter)
CREATE TABLE IF NOT EXISTS receipt (
    voter_id TEXT PRIMARY KEY REFERENCES voter(id),
    token TEXT NOT NULL UNIQUE,
    confirmation_code TEXT NOT NULL,
    issued_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    client TEXT
);

-- Election window (single row)
CREATE TABLE IF NOT EXISTS election_window (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    starts_at TIMESTAMP,
    ends_at TIMESTAMP,
    override_open BOOLEAN,
    override_at TIMESTAMP
);
`
