// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/campus-ballot/db"
	"github.com/danielhkuo/campus-ballot/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertPosition appends a position after the existing ones.
func (s *Store) InsertPosition(ctx context.Context, p models.Position) error {
	return insertPosition(ctx, s.db, p)
}

func insertPosition(ctx context.Context, ex execer, p models.Position) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO position (id, title, allow_abstain, ordinal)
		SELECT $1, $2, $3, COALESCE(MAX(ordinal), 0) + 1 FROM position
	`, p.ID, p.Title, p.AllowAbstain)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// InsertRoster inserts positions with their candidates in one transaction.
// On any failure nothing is written.
func (s *Store) InsertRoster(ctx context.Context, positions []models.Position) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range positions {
		if err := insertPosition(ctx, tx, p); err != nil {
			return fmt.Errorf("position %s: %w", p.ID, err)
		}
		for _, c := range p.Candidates {
			c.PositionID = p.ID
			if err := insertCandidate(ctx, tx, c); err != nil {
				return fmt.Errorf("candidate %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster: %w", err)
	}
	return nil
}

// ListPositions returns positions and their candidates in insertion order.
func (s *Store) ListPositions(ctx context.Context) ([]models.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, allow_abstain
		FROM position
		ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Title, &p.AllowAbstain); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Candidates = []models.Candidate{}
		index[p.ID] = len(positions)
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	crows, err := s.db.QueryContext(ctx, `
		SELECT id, position_id, name, bio, platform, photo
		FROM candidate
		ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var c models.Candidate
		if err := crows.Scan(&c.ID, &c.PositionID, &c.Name, &c.Bio, &c.Platform, &c.Photo); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if i, ok := index[c.PositionID]; ok {
			positions[i].Candidates = append(positions[i].Candidates, c)
		}
	}
	return positions, crows.Err()
}

func (s *Store) PositionExists(ctx context.Context, positionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM position WHERE id = $1)
	`, positionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query position: %w", err)
	}
	return exists, nil
}

// InsertCandidate appends a candidate to its position.
func (s *Store) InsertCandidate(ctx context.Context, c models.Candidate) error {
	return insertCandidate(ctx, s.db, c)
}

func insertCandidate(ctx context.Context, ex execer, c models.Candidate) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO candidate (id, position_id, name, bio, platform, photo, ordinal)
		SELECT $1, $2, $3, $4, $5, $6, COALESCE(MAX(ordinal), 0) + 1 FROM candidate
	`, c.ID, c.PositionID, c.Name, c.Bio, c.Platform, c.Photo)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (s *Store) GetCandidate(ctx context.Context, candidateID string) (models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, position_id, name, bio, platform, photo
		FROM candidate
		WHERE id = $1
	`, candidateID).Scan(&c.ID, &c.PositionID, &c.Name, &c.Bio, &c.Platform, &c.Photo)
	if err == sql.ErrNoRows {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// DeleteCandidate removes a candidate. Unknown ids are not an error.
// Ballots naming the candidate are kept.
func (s *Store) DeleteCandidate(ctx context.Context, candidateID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, candidateID)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return nil
}
