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

// SubmitBallots persists a voter's complete ballot set and receipt in one
// transaction. The compare-and-set on has_voted is the single point where
// concurrent submissions from the same voter are decided; the loser gets
// ErrConflict and nothing from its attempt is written.
func (s *Store) SubmitBallots(ctx context.Context, voterID string, ballots []models.Ballot, receipt models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	castAt := receipt.IssuedAt.UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO voter (id, role, has_voted, registered_at)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (id) DO NOTHING
	`, voterID, models.RoleVoter, castAt)
	if err != nil {
		return fmt.Errorf("failed to register voter: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE voter
		SET has_voted = TRUE, voted_at = $2
		WHERE id = $1 AND has_voted = FALSE
	`, voterID, castAt)
	if err != nil {
		return fmt.Errorf("failed to mark voter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark voter: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	for _, b := range ballots {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ballot (voter_id, position_id, choice, cast_at)
			VALUES ($1, $2, $3, $4)
		`, voterID, b.PositionID, b.Choice, castAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("failed to insert ballot: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipt (voter_id, token, confirmation_code, issued_at, ip_hash, client)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voterID, receipt.Token, receipt.ConfirmationCode, castAt, nullable(receipt.IPHash), nullable(receipt.Client))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// TallyCounts aggregates every stored ballot in a single statement, so the
// result is one consistent snapshot.
func (s *Store) TallyCounts(ctx context.Context) ([]models.TallyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position_id, choice, COUNT(*)
		FROM ballot
		GROUP BY position_id, choice
		ORDER BY position_id, choice
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to tally ballots: %w", err)
	}
	defer rows.Close()

	var out []models.TallyRow
	for rows.Next() {
		var r models.TallyRow
		if err := rows.Scan(&r.PositionID, &r.Choice, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tally row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BallotsFor returns the stored ballots of one voter.
func (s *Store) BallotsFor(ctx context.Context, voterID string) ([]models.Ballot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT voter_id, position_id, choice, cast_at
		FROM ballot
		WHERE voter_id = $1
		ORDER BY position_id
	`, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	ballots := []models.Ballot{}
	for rows.Next() {
		var b models.Ballot
		if err := rows.Scan(&b.VoterID, &b.PositionID, &b.Choice, &b.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, b)
	}
	return ballots, rows.Err()
}

func (s *Store) CountBallots(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ballot`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ballots: %w", err)
	}
	return n, nil
}

func (s *Store) CountReceipts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipt`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count receipts: %w", err)
	}
	return n, nil
}

func (s *Store) GetReceipt(ctx context.Context, voterID string) (models.Receipt, error) {
	var r models.Receipt
	var ipHash, client sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT voter_id, token, confirmation_code, issued_at, ip_hash, client
		FROM receipt
		WHERE voter_id = $1
	`, voterID).Scan(&r.VoterID, &r.Token, &r.ConfirmationCode, &r.IssuedAt, &ipHash, &client)
	if err == sql.ErrNoRows {
		return models.Receipt{}, ErrNotFound
	}
	if err != nil {
		return models.Receipt{}, fmt.Errorf("failed to query receipt: %w", err)
	}
	r.IPHash = ipHash.String
	r.Client = client.String
	return r, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
