// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the campus-ballot API server.

campus-ballot runs a student government election: a roster of positions
and candidates, a voting window, one all-or-nothing ballot set per voter,
and a live tally.

# Starting the Server

SQLite is the default store, so a local run needs only the secrets:

	ADMIN_KEY_SALT=... RECEIPT_SALT=... VOTER_TOKEN_SECRET=... go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." --seed roster.json

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - RECEIPT_SALT (--receipt-salt): Secret for receipt confirmation codes and IP hashes
  - VOTER_TOKEN_SECRET (--token-secret): HS256 key shared with the identity provider

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string or SQLite file (default: campus-ballot.db)
  - ELECTION_ID (--election): Election the admin key is bound to (default: default)
  - SEED_FILE (--seed): JSON roster loaded when the roster is empty
  - ALLOW_RESULTS_DURING_VOTING (--results-during-voting): default false
  - REQUIRE_VOTER_ID (--require-voter-id): default true
  - WINDOW_POLL_INTERVAL (--window-poll): default 5s

Print the admin key for the configured election and exit:

	go run . --print-admin-key

# Architecture

  - election: voting window, roster, submission and tally rules
  - store: SQL persistence for ballots, voters, roster and window
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: identity, error mapping, CORS, logging, JSON helpers
  - metrics: Prometheus collectors
  - models: Request/response and domain types
  - auth: Token verification, admin keys, receipt codes
  - db: Connection and schema
  - cliparse: Configuration parsing
*/
package main
