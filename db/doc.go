// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open selects the driver by type, "sqlite" (modernc.org/sqlite, the default)
or "postgres" (github.com/lib/pq):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to a single open connection so concurrent
transactions queue instead of failing with SQLITE_BUSY.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on both databases.

# Tables

  - position: Roster positions in insertion order
  - candidate: Candidates per position
  - voter: Known voters and the one-shot has_voted flag
  - ballot: One row per (voter_id, position_id), never updated
  - receipt: One issuance row per voter
  - election_window: Single-row schedule and manual override

# Relationships

	position 1──* candidate
	voter 1──* ballot
	voter 1──1 receipt

ballot.choice is deliberately not a foreign key: removing a candidate leaves
its ballots in place so totals still add up.

# Constraint Errors

IsUniqueViolation recognises unique and primary key failures from both
drivers (pq code 23505, SQLITE_CONSTRAINT_UNIQUE/PRIMARYKEY).
*/
package db
