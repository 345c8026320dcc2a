// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

// CreateCandidate adds a candidate to an election that is still Scheduled
// at now. The insert only selects the election row while it qualifies.
func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate, now time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO candidate (id, election_id, name, party)
		SELECT ?, id, ?, ?
		FROM election
		WHERE id = ? AND `+scheduledAt+`
	`), c.ID, c.Name, c.Party, c.ElectionID, now.UTC())

	if violates(err, uqCandidateElectionName) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	if n == 0 {
		return s.notScheduledOrMissing(ctx, c.ElectionID)
	}
	return nil
}

func (s *Store) CandidateByID(ctx context.Context, id string) (models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, election_id, name, party
		FROM candidate
		WHERE id = ?
	`), id).Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns the candidates of an election ordered by name.
func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, election_id, name, party
		FROM candidate
		WHERE election_id = ?
		ORDER BY name, id
	`), electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}
