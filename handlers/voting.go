// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/election"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

type VotingHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewVotingHandler(svc *election.Service, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{svc: svc, cfg: cfg}
}

// SubmitBallots handles POST /votes
// The voter comes from the verified token, never from the body.
func (h *VotingHandler) SubmitBallots(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Ballots == nil {
		req.Ballots = map[string]string{}
	}

	receipt, err := h.svc.Submitter.Submit(r.Context(), election.Submission{
		VoterID: id.VoterID,
		Ballots: req.Ballots,
		IPHash:  auth.HashIP(middleware.GetClientIP(r), h.cfg.ReceiptSalt),
		Client:  middleware.ClientSummary(r),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{Receipt: receipt})
}

// GetMyVote handles GET /votes/me
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
		return
	}

	resp, err := h.svc.MyVote(r.Context(), id.VoterID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
