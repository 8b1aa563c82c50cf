// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"time"

	"github.com/danielhkuo/campus-ballot/models"
)

// BallotStore is the append-only ballot record.
type BallotStore interface {
	HasVoted(ctx context.Context, voterID string) (bool, error)
	SubmitBallots(ctx context.Context, voterID string, ballots []models.Ballot, receipt models.Receipt) error
	TallyCounts(ctx context.Context) ([]models.TallyRow, error)
	CountReceipts(ctx context.Context) (int, error)
}

// Tally derives results from the stored ballots on every call, so a
// committed submission is visible to the next read.
type Tally struct {
	roster  RosterStore
	ballots BallotStore
	now     func() time.Time
}

func NewTally(roster RosterStore, ballots BallotStore, now func() time.Time) *Tally {
	if now == nil {
		now = time.Now
	}
	return &Tally{roster: roster, ballots: ballots, now: now}
}

// ComputeResults returns per-position counts in roster order. Ballots for
// candidates no longer on the roster are reported as orphaned and still
// count toward the position total.
func (t *Tally) ComputeResults(ctx context.Context) (models.Results, error) {
	positions, err := t.roster.ListPositions(ctx)
	if err != nil {
		return models.Results{}, internal(err)
	}
	rows, err := t.ballots.TallyCounts(ctx)
	if err != nil {
		return models.Results{}, internal(err)
	}
	voters, err := t.ballots.CountReceipts(ctx)
	if err != nil {
		return models.Results{}, internal(err)
	}

	counts := make(map[string]map[string]int)
	for _, r := range rows {
		if counts[r.PositionID] == nil {
			counts[r.PositionID] = make(map[string]int)
		}
		counts[r.PositionID][r.Choice] += r.Count
	}

	results := models.Results{
		Positions:   make([]models.PositionResult, 0, len(positions)),
		TotalVoters: voters,
		ComputedAt:  t.now().UTC(),
	}
	for _, p := range positions {
		results.Positions = append(results.Positions, tallyPosition(p, counts[p.ID]))
	}
	return results, nil
}

func tallyPosition(p models.Position, choices map[string]int) models.PositionResult {
	res := models.PositionResult{
		ID:         p.ID,
		Title:      p.Title,
		Candidates: make([]models.CandidateResult, 0, len(p.Candidates)),
		Winners:    []string{},
	}

	live := make(map[string]bool, len(p.Candidates))
	for _, c := range p.Candidates {
		live[c.ID] = true
	}
	for choice, n := range choices {
		res.TotalBallots += n
		switch {
		case choice == models.Abstain:
			res.AbstainCount += n
		case !live[choice]:
			res.OrphanedCount += n
		}
	}

	best := 0
	for _, c := range p.Candidates {
		votes := choices[c.ID]
		res.Candidates = append(res.Candidates, models.CandidateResult{
			ID:         c.ID,
			Name:       c.Name,
			Votes:      votes,
			Percentage: Percentage(votes, res.TotalBallots),
		})
		if votes > best {
			best = votes
		}
	}

	// Every candidate sharing the top count wins; ties are reported, not broken.
	if best > 0 {
		for _, c := range res.Candidates {
			if c.Votes == best {
				res.Winners = append(res.Winners, c.ID)
			}
		}
	}
	return res
}

// Percentage is count/total*100, or 0 when nothing was cast.
func Percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
