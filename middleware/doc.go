// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /positions", middleware.WithLogging(handler))

Logs request start and completion with a request id, status and duration_ms.

# Identity

Authenticator verifies bearer tokens from the identity provider:

	authn := middleware.NewAuthenticator(cfg, svc)
	mux.HandleFunc("POST /votes", authn.RequireVoter(h.SubmitBallots))
	mux.HandleFunc("POST /candidates", authn.RequireAdmin(h.AddCandidate))

RequireAdmin also accepts the X-Admin-Key header. Handlers read the caller
with IdentityFrom.

# Errors

WriteError maps election errors to HTTP statuses and codes. Internal errors
are logged and returned as a generic retryable 500.

# Client Details

GetClientIP honors X-Forwarded-For and X-Real-IP. ClientSummary condenses
the User-Agent for receipts.
*/
package middleware
