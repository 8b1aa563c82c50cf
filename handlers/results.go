// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/election"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

// ResultsHandler serves the roster, the window state and the tally.
type ResultsHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewResultsHandler(svc *election.Service, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{svc: svc, cfg: cfg}
}

// GetPositions handles GET /positions
func (h *ResultsHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.svc.Registry.ListPositions(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.PositionsResponse{Positions: positions})
}

// GetCandidate handles GET /candidates/{id}
func (h *ResultsHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Registry.GetCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}

// GetWindow handles GET /voting-window
func (h *ResultsHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.svc.Session.Window())
}

// GetResults handles GET /results
// Sealed while voting is open unless configured otherwise; admins always see them.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	if h.svc.Session.IsOpen() && !h.cfg.AllowResultsDuringVoting {
		id, ok := middleware.IdentityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			middleware.ErrorResponse(w, http.StatusForbidden, "Results are not available while voting is open")
			return
		}
		slog.Info("admin viewed results during voting", "admin", id.VoterID)
	}

	results, err := h.svc.Tally.ComputeResults(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}
