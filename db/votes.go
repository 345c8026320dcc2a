// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-vote/models"
)

// HasVoted is a fast pre-check only. InsertVote is what enforces uniqueness.
func (s *Store) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE election_id = ? AND voter_id = ?
		)
	`), electionID, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return exists, nil
}

// InsertVote writes the vote in its own transaction. A concurrent vote by
// the same voter in the same election loses on uq_vote_election_voter and
// is reported as ErrDuplicateVote.
func (s *Store) InsertVote(ctx context.Context, v models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO vote (id, election_id, voter_id, candidate_id, voted_at)
		VALUES (?, ?, ?, ?, ?)
	`), v.ID, v.ElectionID, v.VoterID, v.CandidateID, v.VotedAt.UTC())

	if violates(err, uqVoteElectionVoter) {
		return ErrDuplicateVote
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if violates(err, uqVoteElectionVoter) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	return nil
}

// TallyVotes counts votes per candidate of the election, including
// candidates with no votes. Ordering is left to the caller.
func (s *Store) TallyVotes(ctx context.Context, electionID string) ([]models.CandidateTally, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT c.id, c.name, c.party, COUNT(v.id)
		FROM candidate c
		LEFT JOIN vote v ON v.candidate_id = c.id AND v.election_id = c.election_id
		WHERE c.election_id = ?
		GROUP BY c.id, c.name, c.party
	`), electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	tallies := []models.CandidateTally{}
	for rows.Next() {
		var t models.CandidateTally
		if err := rows.Scan(&t.CandidateID, &t.Name, &t.Party, &t.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tallies: %w", err)
	}
	return tallies, nil
}
