// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the campus-ballot API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg, m)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Public:

	GET /positions        - Positions with candidates, in ballot order
	GET /candidates/{id}  - One candidate
	GET /voting-window    - Open state and schedule
	GET /results          - Tally (sealed while open unless configured)

Voting (Authorization: Bearer <voter token>):

	POST /votes     - Submit the complete ballot set
	GET  /votes/me  - Whether the caller voted, with receipt

Administration (admin token or X-Admin-Key):

	POST   /voting-window/toggle
	PUT    /voting-window
	POST   /positions
	POST   /candidates
	DELETE /candidates/{id}
	GET    /admin/stats
	GET    /admin/voters?status=voted|not-voted

Requests other than /health and /metrics are wrapped with
middleware.WithLogging.
*/
package router
