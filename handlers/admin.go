// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/election"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

// AdminHandler covers window control, roster edits and turnout reporting.
// Every route is wrapped in Authenticator.RequireAdmin.
type AdminHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewAdminHandler(svc *election.Service, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{svc: svc, cfg: cfg}
}

// ToggleWindow handles POST /voting-window/toggle
func (h *AdminHandler) ToggleWindow(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Session.Toggle(r.Context()); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.svc.Session.Window())
}

// SetWindow handles PUT /voting-window
func (h *AdminHandler) SetWindow(w http.ResponseWriter, r *http.Request) {
	var req models.SetWindowRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "startsAt and endsAt are required")
		return
	}

	if err := h.svc.Session.SetSchedule(r.Context(), req.StartsAt, req.EndsAt); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.svc.Session.Window())
}

// AddPosition handles POST /positions
func (h *AdminHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req models.AddPositionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p := models.Position{ID: req.ID, Title: req.Title, AllowAbstain: req.AllowAbstain, Candidates: []models.Candidate{}}
	if err := h.svc.Registry.AddPosition(r.Context(), p); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, p)
}

// AddCandidate handles POST /candidates
func (h *AdminHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PositionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "positionId is required")
		return
	}

	c, err := h.svc.Registry.AddCandidate(r.Context(), req.PositionID, election.CandidateFields{
		Name:     req.Name,
		Bio:      req.Bio,
		Platform: req.Platform,
		Photo:    req.Photo,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, c)
}

// RemoveCandidate handles DELETE /candidates/{id}
func (h *AdminHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Registry.RemoveCandidate(r.Context(), r.PathValue("id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// GetVoters handles GET /admin/voters?status=voted|not-voted
func (h *AdminHandler) GetVoters(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")
	if filter == "" {
		filter = models.FilterAll
	}
	switch filter {
	case models.FilterAll, models.FilterVoted, models.FilterNotVoted:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be voted or not-voted")
		return
	}

	voters, err := h.svc.Voters(r.Context(), filter)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.VotersResponse{Voters: voters})
}
