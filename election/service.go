// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/campus-ballot/metrics"
	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/store"
)

// Options tune a Service.
type Options struct {
	ReceiptSalt string
	// Now defaults to time.Now
	Now func() time.Time
}

// Service wires the election components over one store.
type Service struct {
	Session   *Session
	Registry  *Registry
	Tally     *Tally
	Submitter *Submitter

	store *store.Store
}

func New(ctx context.Context, st *store.Store, m *metrics.Metrics, opts Options) (*Service, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	st.WithClock(now)

	session, err := NewSession(ctx, st, m, now)
	if err != nil {
		return nil, err
	}

	return &Service{
		Session:   session,
		Registry:  NewRegistry(st, session, m),
		Tally:     NewTally(st, st, now),
		Submitter: NewSubmitter(session, st, st, m, opts.ReceiptSalt, now),
		store:     st,
	}, nil
}

// RegisterVoter records a caller the first time they authenticate.
func (s *Service) RegisterVoter(ctx context.Context, voterID, role string) error {
	if err := s.store.EnsureVoter(ctx, voterID, role); err != nil {
		return internal(err)
	}
	return nil
}

// MyVote reports whether the voter has voted and, if so, their receipt.
func (s *Service) MyVote(ctx context.Context, voterID string) (models.MyVoteResponse, error) {
	r, err := s.store.GetReceipt(ctx, voterID)
	if errors.Is(err, store.ErrNotFound) {
		return models.MyVoteResponse{HasVoted: false}, nil
	}
	if err != nil {
		return models.MyVoteResponse{}, internal(err)
	}
	return models.MyVoteResponse{HasVoted: true, Receipt: &r}, nil
}

func (s *Service) Voters(ctx context.Context, filter string) ([]models.Voter, error) {
	voters, err := s.store.ListVoters(ctx, filter)
	if err != nil {
		return nil, internal(err)
	}
	return voters, nil
}

// Stats summarises the roster and turnout for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (models.ElectionStats, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return models.ElectionStats{}, internal(err)
	}
	registered, voted, err := s.store.VoterCounts(ctx)
	if err != nil {
		return models.ElectionStats{}, internal(err)
	}
	ballots, err := s.store.CountBallots(ctx)
	if err != nil {
		return models.ElectionStats{}, internal(err)
	}

	stats := models.ElectionStats{
		Positions:        len(positions),
		RegisteredVoters: registered,
		VotedVoters:      voted,
		Turnout:          Percentage(voted, registered),
		BallotsCast:      ballots,
		Open:             s.Session.IsOpen(),
	}
	for _, p := range positions {
		stats.Candidates += len(p.Candidates)
	}
	return stats, nil
}
