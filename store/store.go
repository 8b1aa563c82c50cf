// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists the election in PostgreSQL or SQLite through
// database/sql. Queries use $N placeholders, which both drivers accept.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/campus-ballot/models"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness rule rejected the write.
	ErrConflict = errors.New("conflict")
)

// Store is the SQL-backed ballot store, roster and window record.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// WithClock replaces the time source used for stored timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// EnsureVoter registers a voter on first sight. Existing rows are untouched.
func (s *Store) EnsureVoter(ctx context.Context, voterID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voter (id, role, has_voted, registered_at)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (id) DO NOTHING
	`, voterID, role, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to register voter: %w", err)
	}
	return nil
}

// GetVoter returns ErrNotFound for voters that never authenticated.
func (s *Store) GetVoter(ctx context.Context, voterID string) (models.Voter, error) {
	var v models.Voter
	var votedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, has_voted, registered_at, voted_at
		FROM voter
		WHERE id = $1
	`, voterID).Scan(&v.ID, &v.Role, &v.HasVoted, &v.RegisteredAt, &votedAt)
	if err == sql.ErrNoRows {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	if votedAt.Valid {
		v.VotedAt = &votedAt.Time
	}
	return v, nil
}

func (s *Store) HasVoted(ctx context.Context, voterID string) (bool, error) {
	var voted bool
	err := s.db.QueryRowContext(ctx, `
		SELECT has_voted FROM voter WHERE id = $1
	`, voterID).Scan(&voted)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query voter: %w", err)
	}
	return voted, nil
}

// ListVoters returns voters in registration order, filtered by voting status.
func (s *Store) ListVoters(ctx context.Context, filter string) ([]models.Voter, error) {
	query := `SELECT id, role, has_voted, registered_at, voted_at FROM voter`
	switch filter {
	case models.FilterVoted:
		query += ` WHERE has_voted = TRUE`
	case models.FilterNotVoted:
		query += ` WHERE has_voted = FALSE`
	}
	query += ` ORDER BY registered_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		var v models.Voter
		var votedAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.Role, &v.HasVoted, &v.RegisteredAt, &votedAt); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		if votedAt.Valid {
			v.VotedAt = &votedAt.Time
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

// VoterCounts returns the number of registered voters and how many have voted.
func (s *Store) VoterCounts(ctx context.Context) (registered, voted int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN has_voted THEN 1 ELSE 0 END), 0)
		FROM voter
		WHERE role = 'voter'
	`).Scan(&registered, &voted)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return registered, voted, nil
}
