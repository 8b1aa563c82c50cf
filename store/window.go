// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/campus-ballot/models"
)

// GetWindow returns the stored window, or a zero window when none was saved.
func (s *Store) GetWindow(ctx context.Context) (models.VotingWindow, error) {
	var startsAt, endsAt, overrideAt sql.NullTime
	var override sql.NullBool
	err := s.db.QueryRowContext(ctx, `
		SELECT starts_at, ends_at, override_open, override_at
		FROM election_window
		WHERE id = 1
	`).Scan(&startsAt, &endsAt, &override, &overrideAt)
	if err == sql.ErrNoRows {
		return models.VotingWindow{}, nil
	}
	if err != nil {
		return models.VotingWindow{}, fmt.Errorf("failed to query voting window: %w", err)
	}

	var w models.VotingWindow
	if startsAt.Valid {
		w.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		w.EndsAt = &endsAt.Time
	}
	if override.Valid {
		w.Override = &override.Bool
	}
	if overrideAt.Valid {
		w.OverrideAt = &overrideAt.Time
	}
	return w, nil
}

// SaveWindow upserts the single window row.
func (s *Store) SaveWindow(ctx context.Context, w models.VotingWindow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO election_window (id, starts_at, ends_at, override_open, override_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET starts_at = excluded.starts_at,
		    ends_at = excluded.ends_at,
		    override_open = excluded.override_open,
		    override_at = excluded.override_at
	`, nullTime(w.StartsAt), nullTime(w.EndsAt), nullBool(w.Override), nullTime(w.OverrideAt))
	if err != nil {
		return fmt.Errorf("failed to save voting window: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
