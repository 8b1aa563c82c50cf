// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/metrics"
	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/store"
)

// RosterStore persists positions and candidates.
type RosterStore interface {
	InsertPosition(ctx context.Context, p models.Position) error
	InsertRoster(ctx context.Context, positions []models.Position) error
	ListPositions(ctx context.Context) ([]models.Position, error)
	PositionExists(ctx context.Context, positionID string) (bool, error)
	InsertCandidate(ctx context.Context, c models.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (models.Candidate, error)
	DeleteCandidate(ctx context.Context, candidateID string) error
}

// CandidateFields are the admin-supplied candidate attributes.
type CandidateFields struct {
	Name     string
	Bio      string
	Platform string
	Photo    string
}

// Registry owns the roster. Changes are refused while the window is open so
// tallies always refer to the roster voters saw.
type Registry struct {
	store   RosterStore
	session *Session
	metrics *metrics.Metrics
}

func NewRegistry(store RosterStore, session *Session, m *metrics.Metrics) *Registry {
	return &Registry{store: store, session: session, metrics: m}
}

func (r *Registry) ListPositions(ctx context.Context) ([]models.Position, error) {
	positions, err := r.store.ListPositions(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return positions, nil
}

func (r *Registry) AddPosition(ctx context.Context, p models.Position) error {
	if p.ID == "" || p.Title == "" {
		return ErrInvalidPosition
	}
	if r.session.IsOpen() {
		return ErrRosterLocked
	}
	err := r.store.InsertPosition(ctx, p)
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("position %q: %w", p.ID, ErrDuplicateID)
	}
	if err != nil {
		return internal(err)
	}
	return nil
}

func (r *Registry) AddCandidate(ctx context.Context, positionID string, fields CandidateFields) (models.Candidate, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return models.Candidate{}, ErrInvalidCandidate
	}

	exists, err := r.store.PositionExists(ctx, positionID)
	if err != nil {
		return models.Candidate{}, internal(err)
	}
	if !exists {
		return models.Candidate{}, fmt.Errorf("%w: %s", ErrUnknownPosition, positionID)
	}

	if r.session.IsOpen() {
		return models.Candidate{}, ErrRosterLocked
	}

	suffix, err := auth.GenerateID(6)
	if err != nil {
		return models.Candidate{}, internal(err)
	}

	c := models.Candidate{
		ID:         "candidate-" + suffix,
		PositionID: positionID,
		Name:       strings.TrimSpace(fields.Name),
		Bio:        fields.Bio,
		Platform:   fields.Platform,
		Photo:      fields.Photo,
	}
	if err := r.store.InsertCandidate(ctx, c); err != nil {
		return models.Candidate{}, internal(err)
	}
	r.metrics.IncrementRosterChange("add")

	slog.Info("candidate added", "candidate_id", c.ID, "position_id", positionID)
	return c, nil
}

// RemoveCandidate is idempotent: unknown ids are a no-op. Ballots already
// cast for the candidate stay in the store and are tallied as orphaned.
func (r *Registry) RemoveCandidate(ctx context.Context, candidateID string) error {
	if r.session.IsOpen() {
		return ErrRosterLocked
	}
	if err := r.store.DeleteCandidate(ctx, candidateID); err != nil {
		return internal(err)
	}
	r.metrics.IncrementRosterChange("remove")

	slog.Info("candidate removed", "candidate_id", candidateID)
	return nil
}

func (r *Registry) GetCandidate(ctx context.Context, candidateID string) (models.Candidate, error) {
	c, err := r.store.GetCandidate(ctx, candidateID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Candidate{}, fmt.Errorf("%w: %s", ErrUnknownCandidate, candidateID)
	}
	if err != nil {
		return models.Candidate{}, internal(err)
	}
	return c, nil
}

// SeedFile loads the roster from a JSON file. See Seed.
func (r *Registry) SeedFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return r.Seed(ctx, f)
}

// Seed loads positions and candidates from a JSON array of positions when
// the roster is still empty. It returns the number of positions created.
// The file is checked as a whole before anything is written, and is stored
// in one transaction, so a bad file leaves the roster empty.
func (r *Registry) Seed(ctx context.Context, src io.Reader) (int, error) {
	existing, err := r.store.ListPositions(ctx)
	if err != nil {
		return 0, internal(err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	var positions []models.Position
	if err := json.NewDecoder(src).Decode(&positions); err != nil {
		return 0, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := prepareRoster(positions); err != nil {
		return 0, err
	}

	err = r.store.InsertRoster(ctx, positions)
	if errors.Is(err, store.ErrConflict) {
		return 0, fmt.Errorf("%v: %w", err, ErrDuplicateID)
	}
	if err != nil {
		return 0, internal(err)
	}

	slog.Info("roster seeded", "positions", len(positions))
	return len(positions), nil
}

// prepareRoster validates a seed roster in place and fills in position ids
// and generated candidate ids.
func prepareRoster(positions []models.Position) error {
	seenPositions := make(map[string]bool)
	seenCandidates := make(map[string]bool)

	for i := range positions {
		p := &positions[i]
		if p.ID == "" || strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("seed position %d: %w", i+1, ErrInvalidPosition)
		}
		if seenPositions[p.ID] {
			return fmt.Errorf("position %q: %w", p.ID, ErrDuplicateID)
		}
		seenPositions[p.ID] = true

		for j := range p.Candidates {
			c := &p.Candidates[j]
			c.PositionID = p.ID
			c.Name = strings.TrimSpace(c.Name)
			if c.Name == "" {
				return fmt.Errorf("position %q candidate %d: %w", p.ID, j+1, ErrInvalidCandidate)
			}
			if c.ID == models.Abstain {
				return fmt.Errorf("candidate id %q is reserved: %w", c.ID, ErrInvalidCandidate)
			}
			if c.ID == "" {
				suffix, err := auth.GenerateID(6)
				if err != nil {
					return internal(err)
				}
				c.ID = "candidate-" + suffix
			}
			if seenCandidates[c.ID] {
				return fmt.Errorf("candidate %q: %w", c.ID, ErrDuplicateID)
			}
			seenCandidates[c.ID] = true
		}
	}
	return nil
}
