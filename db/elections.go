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

// ElectionStats is an election with its candidate and vote counts.
type ElectionStats struct {
	models.Election
	CandidateCount int
	VoteCount      int
}

const electionStatsColumns = `
	e.id, e.name, e.start_date, e.end_date, e.created_at,
	(SELECT COUNT(*) FROM candidate c WHERE c.election_id = e.id),
	(SELECT COUNT(*) FROM vote v WHERE v.election_id = e.id)`

// scheduledAt matches election rows that are still Scheduled at the bound
// instant: a missing bound, or a start still in the future.
const scheduledAt = `(start_date IS NULL OR end_date IS NULL OR start_date > ?)`

func (s *Store) CreateElection(ctx context.Context, e models.Election) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO election (id, name, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), e.ID, e.Name, utcPtr(e.StartDate), utcPtr(e.EndDate), e.CreatedAt.UTC())

	if violates(err, uqElectionName) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert election: %w", err)
	}
	return nil
}

func (s *Store) ElectionByID(ctx context.Context, id string) (models.Election, error) {
	var e models.Election
	var start, end sql.NullTime
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, name, start_date, end_date, created_at
		FROM election
		WHERE id = ?
	`), id).Scan(&e.ID, &e.Name, &start, &end, &e.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}

	e.StartDate = timePtr(start)
	e.EndDate = timePtr(end)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (s *Store) ElectionStatsByID(ctx context.Context, id string) (ElectionStats, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+electionStatsColumns+`
		FROM election e
		WHERE e.id = ?
	`), id)

	stats, err := scanElectionStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ElectionStats{}, ErrNotFound
	}
	if err != nil {
		return ElectionStats{}, fmt.Errorf("failed to query election: %w", err)
	}
	return stats, nil
}

// ListElections returns one page of elections, newest first, and the total count.
func (s *Store) ListElections(ctx context.Context, limit, offset int) ([]ElectionStats, int, error) {
	limit, offset = limitOffset(limit, offset)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM election`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count elections: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+electionStatsColumns+`
		FROM election e
		ORDER BY e.created_at DESC, e.id
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []ElectionStats{}
	for rows.Next() {
		stats, err := scanElectionStats(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate elections: %w", err)
	}

	return elections, total, nil
}

// UpdateElection overwrites the name and bounds of an election that is
// still Scheduled at now. The check and the write are one statement, so an
// election that opens meanwhile is never changed.
func (s *Store) UpdateElection(ctx context.Context, e models.Election, now time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE election
		SET name = ?, start_date = ?, end_date = ?
		WHERE id = ? AND `+scheduledAt+`
	`), e.Name, utcPtr(e.StartDate), utcPtr(e.EndDate), e.ID, now.UTC())

	if violates(err, uqElectionName) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update election: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update election: %w", err)
	}
	if n == 0 {
		return s.notScheduledOrMissing(ctx, e.ID)
	}
	return nil
}

// notScheduledOrMissing explains a conditional write that matched no row.
func (s *Store) notScheduledOrMissing(ctx context.Context, electionID string) error {
	if _, err := s.ElectionByID(ctx, electionID); err != nil {
		return err
	}
	return ErrNotScheduled
}

// DeleteElection removes an election that has no candidates and no votes.
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var dependents int
	err = tx.QueryRowContext(ctx, s.q(`
		SELECT
			(SELECT COUNT(*) FROM candidate WHERE election_id = ?) +
			(SELECT COUNT(*) FROM vote WHERE election_id = ?)
	`), id, id).Scan(&dependents)
	if err != nil {
		return fmt.Errorf("failed to count election dependents: %w", err)
	}
	if dependents > 0 {
		return ErrInUse
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM election WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete election: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete election: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElectionStats(row rowScanner) (ElectionStats, error) {
	var stats ElectionStats
	var start, end sql.NullTime
	err := row.Scan(
		&stats.ID, &stats.Name, &start, &end, &stats.CreatedAt,
		&stats.CandidateCount, &stats.VoteCount,
	)
	if err != nil {
		return ElectionStats{}, err
	}
	stats.StartDate = timePtr(start)
	stats.EndDate = timePtr(end)
	stats.CreatedAt = stats.CreatedAt.UTC()
	return stats, nil
}
