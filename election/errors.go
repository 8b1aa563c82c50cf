// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
	"strings"
)

// Client-facing errors. All are correctable or terminal for the caller;
// none is a server fault.
var (
	ErrVotingClosed     = errors.New("voting is closed")
	ErrAlreadyVoted     = errors.New("voter has already voted")
	ErrIncompleteBallot = errors.New("ballot is incomplete")
	ErrInvalidChoice    = errors.New("invalid choice")
	ErrUnknownPosition  = errors.New("unknown position")
	ErrUnknownCandidate = errors.New("unknown candidate")
	ErrRosterLocked     = errors.New("roster cannot change while voting is open")
	ErrDuplicateID      = errors.New("id already exists")
	ErrInvalidWindow    = errors.New("voting window must end after it starts")
	ErrInvalidCandidate = errors.New("candidate name is required")
	ErrInvalidPosition  = errors.New("position id and title are required")
)

// ErrInternal marks storage faults. Callers may retry the whole request.
var ErrInternal = errors.New("internal error")

// IncompleteBallotError lists the titles of positions the ballot set left out.
type IncompleteBallotError struct {
	Missing []string
}

func (e *IncompleteBallotError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteBallot, strings.Join(e.Missing, ", "))
}

func (e *IncompleteBallotError) Unwrap() error { return ErrIncompleteBallot }

// InvalidChoiceError lists the position ids whose choice was rejected.
type InvalidChoiceError struct {
	Positions []string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("%s for %s", ErrInvalidChoice, strings.Join(e.Positions, ", "))
}

func (e *InvalidChoiceError) Unwrap() error { return ErrInvalidChoice }

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// Code maps an error to its stable wire code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrVotingClosed):
		return "voting_closed"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrIncompleteBallot):
		return "incomplete_ballot"
	case errors.Is(err, ErrInvalidChoice):
		return "invalid_choice"
	case errors.Is(err, ErrUnknownPosition):
		return "unknown_position"
	case errors.Is(err, ErrUnknownCandidate):
		return "unknown_candidate"
	case errors.Is(err, ErrRosterLocked):
		return "roster_locked"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, ErrInvalidWindow), errors.Is(err, ErrInvalidCandidate), errors.Is(err, ErrInvalidPosition):
		return "bad_request"
	default:
		return "internal"
	}
}

// Fields returns the offending position titles or ids carried by err.
func Fields(err error) []string {
	var incomplete *IncompleteBallotError
	if errors.As(err, &incomplete) {
		return incomplete.Missing
	}
	var invalid *InvalidChoiceError
	if errors.As(err, &invalid) {
		return invalid.Positions
	}
	return nil
}
