// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/metrics"
	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/store"
)

// Submission is one voter's complete ballot set plus audit details.
type Submission struct {
	VoterID string
	// positionId -> candidateId or models.Abstain
	Ballots map[string]string
	IPHash  string
	Client  string
}

// Submitter validates ballot sets and hands them to the store as one unit.
type Submitter struct {
	session     *Session
	roster      RosterStore
	ballots     BallotStore
	metrics     *metrics.Metrics
	receiptSalt string
	now         func() time.Time
}

func NewSubmitter(session *Session, roster RosterStore, ballots BallotStore, m *metrics.Metrics, receiptSalt string, now func() time.Time) *Submitter {
	if now == nil {
		now = time.Now
	}
	return &Submitter{
		session:     session,
		roster:      roster,
		ballots:     ballots,
		metrics:     m,
		receiptSalt: receiptSalt,
		now:         now,
	}
}

// Submit checks, in order: the window is open, the voter has not voted, every
// position has an entry, and every entry is a valid choice. Only then is the
// whole set persisted, with the voter marked as voted, in one transaction.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (models.Receipt, error) {
	receipt, err := s.submit(ctx, sub)
	if err != nil {
		code := Code(err)
		s.metrics.IncrementRejected(code)
		if code == "internal" {
			slog.Error("ballot submission failed", "voter_id", sub.VoterID, "error", err)
		} else {
			slog.Info("ballot submission rejected", "voter_id", sub.VoterID, "reason", code)
		}
		return models.Receipt{}, err
	}
	return receipt, nil
}

func (s *Submitter) submit(ctx context.Context, sub Submission) (models.Receipt, error) {
	if !s.session.IsOpen() {
		return models.Receipt{}, ErrVotingClosed
	}

	voted, err := s.ballots.HasVoted(ctx, sub.VoterID)
	if err != nil {
		return models.Receipt{}, internal(err)
	}
	if voted {
		return models.Receipt{}, ErrAlreadyVoted
	}

	positions, err := s.roster.ListPositions(ctx)
	if err != nil {
		return models.Receipt{}, internal(err)
	}

	ballots, err := validate(positions, sub.Ballots)
	if err != nil {
		return models.Receipt{}, err
	}

	now := s.now().UTC()
	for i := range ballots {
		ballots[i].VoterID = sub.VoterID
		ballots[i].CastAt = now
	}

	token := uuid.NewString()
	receipt := models.Receipt{
		Token:            token,
		ConfirmationCode: auth.GenerateConfirmationCode(token, s.receiptSalt),
		IssuedAt:         now,
		VoterID:          sub.VoterID,
		IPHash:           sub.IPHash,
		Client:           sub.Client,
	}

	err = s.ballots.SubmitBallots(ctx, sub.VoterID, ballots, receipt)
	if errors.Is(err, store.ErrConflict) {
		// Lost the race against a concurrent submission from the same voter
		return models.Receipt{}, ErrAlreadyVoted
	}
	if err != nil {
		return models.Receipt{}, internal(err)
	}

	s.metrics.IncrementAccepted(len(ballots))
	slog.Info("ballot set accepted", "voter_id", sub.VoterID, "positions", len(ballots))
	return receipt, nil
}

// validate returns one ballot per position in roster order, or the first
// failing check: missing positions before invalid choices.
func validate(positions []models.Position, set map[string]string) ([]models.Ballot, error) {
	var missing []string
	for _, p := range positions {
		if set[p.ID] == "" {
			missing = append(missing, p.Title)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteBallotError{Missing: missing}
	}

	known := make(map[string]bool, len(positions))
	var invalid []string
	ballots := make([]models.Ballot, 0, len(positions))
	for _, p := range positions {
		known[p.ID] = true
		choice := set[p.ID]
		if !validChoice(p, choice) {
			invalid = append(invalid, p.ID)
			continue
		}
		ballots = append(ballots, models.Ballot{PositionID: p.ID, Choice: choice})
	}

	var extra []string
	for id := range set {
		if !known[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	invalid = append(invalid, extra...)

	if len(invalid) > 0 {
		return nil, &InvalidChoiceError{Positions: invalid}
	}
	return ballots, nil
}

func validChoice(p models.Position, choice string) bool {
	if choice == models.Abstain {
		return p.AllowAbstain
	}
	for _, c := range p.Candidates {
		if c.ID == choice {
			return true
		}
	}
	return false
}
