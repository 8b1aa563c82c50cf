// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/models"
)

type identityKey struct{}

// Registrar records callers the first time they authenticate.
type Registrar interface {
	RegisterVoter(ctx context.Context, voterID, role string) error
}

// Authenticator resolves callers from bearer tokens and admin keys.
type Authenticator struct {
	verifier   *auth.TokenVerifier
	registrar  Registrar
	electionID string
	adminSalt  string
}

func NewAuthenticator(cfg cliparse.Config, registrar Registrar) *Authenticator {
	return &Authenticator{
		verifier:   auth.NewTokenVerifier(cfg.VoterTokenSecret, cfg.RequireVoterID),
		registrar:  registrar,
		electionID: cfg.ElectionID,
		adminSalt:  cfg.AdminKeySalt,
	}
}

// IdentityFrom returns the caller attached by RequireVoter, RequireAdmin or
// Optional.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

func withIdentity(r *http.Request, id auth.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey{}, id))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireVoter admits any authenticated, eligible caller and registers
// them as a voter on first sight.
func (a *Authenticator) RequireVoter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
			return
		}

		id, err := a.verifier.Verify(token)
		if err != nil {
			a.rejectToken(w, err)
			return
		}
		if !id.Eligible {
			ErrorResponse(w, http.StatusForbidden, auth.ErrNotEligible.Error())
			return
		}

		if err := a.registrar.RegisterVoter(r.Context(), id.VoterID, id.Role); err != nil {
			WriteError(w, err)
			return
		}

		next(w, withIdentity(r, id))
	}
}

// RequireAdmin admits admin-role tokens or a valid X-Admin-Key header.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("X-Admin-Key"); key != "" {
			if err := auth.ValidateAdminKey(a.electionID, key, a.adminSalt); err != nil {
				slog.Warn("admin key rejected", "path", r.URL.Path, "remote", GetClientIP(r))
				ErrorResponse(w, http.StatusForbidden, "Invalid admin key")
				return
			}
			next(w, withIdentity(r, auth.Identity{VoterID: "admin-key", Role: models.RoleAdmin, Eligible: true}))
			return
		}

		token := bearerToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Admin credentials required")
			return
		}
		id, err := a.verifier.Verify(token)
		if err != nil {
			a.rejectToken(w, err)
			return
		}
		if !id.IsAdmin() {
			ErrorResponse(w, http.StatusForbidden, "Admin role required")
			return
		}

		next(w, withIdentity(r, id))
	}
}

// Optional attaches the caller when credentials are present and valid and
// passes anonymous requests through untouched.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("X-Admin-Key"); key != "" {
			if auth.ValidateAdminKey(a.electionID, key, a.adminSalt) == nil {
				r = withIdentity(r, auth.Identity{VoterID: "admin-key", Role: models.RoleAdmin, Eligible: true})
			}
			next(w, r)
			return
		}
		if token := bearerToken(r); token != "" {
			if id, err := a.verifier.Verify(token); err == nil {
				r = withIdentity(r, id)
			}
		}
		next(w, r)
	}
}

func (a *Authenticator) rejectToken(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		ErrorResponse(w, http.StatusUnauthorized, "Token has expired")
	case errors.Is(err, auth.ErrMissingVoterID):
		ErrorResponse(w, http.StatusForbidden, "Token carries no student ID")
	default:
		ErrorResponse(w, http.StatusUnauthorized, "Invalid token")
	}
}
