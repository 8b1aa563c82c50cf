// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/campus-ballot/election"
	"github.com/danielhkuo/campus-ballot/models"
)

var codeStatus = map[string]int{
	"voting_closed":     http.StatusForbidden,
	"already_voted":     http.StatusConflict,
	"incomplete_ballot": http.StatusBadRequest,
	"invalid_choice":    http.StatusBadRequest,
	"bad_request":       http.StatusBadRequest,
	"unknown_position":  http.StatusNotFound,
	"unknown_candidate": http.StatusNotFound,
	"roster_locked":     http.StatusConflict,
	"duplicate_id":      http.StatusConflict,
}

// StatusFor maps an election error code to its HTTP status.
func StatusFor(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError renders an election error. Internal faults are logged with
// their cause and reach the client only as a generic retryable error.
func WriteError(w http.ResponseWriter, err error) {
	code := election.Code(err)
	status := StatusFor(code)

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		JSONResponse(w, status, models.ErrorResponse{
			Error:     http.StatusText(status),
			Message:   "Something went wrong, please try again",
			Code:      "internal",
			Retryable: true,
		})
		return
	}

	JSONResponse(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    code,
		Fields:  election.Fields(err),
	})
}
