// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                      Server port
	-d                      Database URL
	-t                      Database type (sqlite or postgres)
	--admin-salt            Admin key salt
	--receipt-salt          Receipt confirmation code salt
	--token-secret          Identity provider token secret
	--election              Election ID (default: "default")
	--seed                  Roster seed file
	--results-during-voting Serve results while voting is open
	--require-voter-id      Require a student ID claim on voter tokens
	--window-poll           Voting window check interval
	--print-admin-key       Print the admin key and exit

# Environment Variables

Flags fall back to environment variables (a .env file is loaded by main):

	PORT                        → -p
	DATABASE_URL                → -d
	DATABASE_TYPE               → -t
	ADMIN_KEY_SALT              → --admin-salt
	RECEIPT_SALT                → --receipt-salt
	VOTER_TOKEN_SECRET          → --token-secret
	ELECTION_ID                 → --election
	SEED_FILE                   → --seed
	ALLOW_RESULTS_DURING_VOTING → --results-during-voting
	REQUIRE_VOTER_ID            → --require-voter-id
	WINDOW_POLL_INTERVAL        → --window-poll

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if a secret is missing, the database type is
unknown, or postgres is selected without a DATABASE_URL. SQLite defaults to
campus-ballot.db in the working directory.
*/
package cliparse
