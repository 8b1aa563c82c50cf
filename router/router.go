// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/election"
	"github.com/danielhkuo/campus-ballot/handlers"
	"github.com/danielhkuo/campus-ballot/metrics"
	"github.com/danielhkuo/campus-ballot/middleware"
)

func NewRouter(svc *election.Service, cfg cliparse.Config, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	authn := middleware.NewAuthenticator(cfg, svc)
	votingHandler := handlers.NewVotingHandler(svc, cfg)
	resultsHandler := handlers.NewResultsHandler(svc, cfg)
	adminHandler := handlers.NewAdminHandler(svc, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Public reads
	mux.HandleFunc("GET /positions", middleware.WithLogging(resultsHandler.GetPositions))
	mux.HandleFunc("GET /candidates/{id}", middleware.WithLogging(resultsHandler.GetCandidate))
	mux.HandleFunc("GET /voting-window", middleware.WithLogging(resultsHandler.GetWindow))
	mux.HandleFunc("GET /results", middleware.WithLogging(authn.Optional(resultsHandler.GetResults)))

	// Voting (voter token)
	mux.HandleFunc("POST /votes", middleware.WithLogging(authn.RequireVoter(votingHandler.SubmitBallots)))
	mux.HandleFunc("GET /votes/me", middleware.WithLogging(authn.RequireVoter(votingHandler.GetMyVote)))

	// Administration (admin token or X-Admin-Key)
	mux.HandleFunc("POST /voting-window/toggle", middleware.WithLogging(authn.RequireAdmin(adminHandler.ToggleWindow)))
	mux.HandleFunc("PUT /voting-window", middleware.WithLogging(authn.RequireAdmin(adminHandler.SetWindow)))
	mux.HandleFunc("POST /positions", middleware.WithLogging(authn.RequireAdmin(adminHandler.AddPosition)))
	mux.HandleFunc("POST /candidates", middleware.WithLogging(authn.RequireAdmin(adminHandler.AddCandidate)))
	mux.HandleFunc("DELETE /candidates/{id}", middleware.WithLogging(authn.RequireAdmin(adminHandler.RemoveCandidate)))
	mux.HandleFunc("GET /admin/stats", middleware.WithLogging(authn.RequireAdmin(adminHandler.GetStats)))
	mux.HandleFunc("GET /admin/voters", middleware.WithLogging(authn.RequireAdmin(adminHandler.GetVoters)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("campus-ballot API v1"))
	})

	return mux
}
