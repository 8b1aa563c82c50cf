// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the campus-ballot API.

# Handler Types

Each handler is a struct over the election service and config:

  - VotingHandler: ballot submission and the caller's own vote
  - ResultsHandler: roster, window state and results
  - AdminHandler: window control, roster edits, turnout reports

	votingHandler := handlers.NewVotingHandler(svc, cfg)

Handlers read the caller from the request context, so voter and admin
routes must be wrapped by middleware.Authenticator.

# Errors

Domain errors go through middleware.WriteError, which maps them to a status
and a stable code:

	voting_closed      403
	already_voted      409
	incomplete_ballot  400 (fields: missing position titles)
	invalid_choice     400 (fields: offending position ids)
	unknown_position   404
	unknown_candidate  404
	roster_locked      409
	internal           500, retryable

# Results

GET /results answers 403 while voting is open unless
ALLOW_RESULTS_DURING_VOTING is set. Admin callers always see results.
*/
package handlers
