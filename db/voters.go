// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-vote/models"
)

func (s *Store) CreateVoter(ctx context.Context, v models.Voter) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO voter (id, external_id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), v.ID, v.ExternalID, v.Name, v.Email, v.Role, v.CreatedAt.UTC())

	if violatesAny(err, uqVoterEmail, uqVoterExternalID) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert voter: %w", err)
	}
	return nil
}

func (s *Store) VoterByID(ctx context.Context, id string) (models.Voter, error) {
	return s.voterWhere(ctx, "id", id)
}

func (s *Store) VoterByEmail(ctx context.Context, email string) (models.Voter, error) {
	return s.voterWhere(ctx, "email", email)
}

// VoterExists reports whether a voter row with the id is present.
func (s *Store) VoterExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT EXISTS(SELECT 1 FROM voter WHERE id = ?)
	`), id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check voter: %w", err)
	}
	return exists, nil
}

// column is never user input
func (s *Store) voterWhere(ctx context.Context, column, value string) (models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, external_id, name, email, role, created_at
		FROM voter
		WHERE `+column+` = ?
	`), value).Scan(&v.ID, &v.ExternalID, &v.Name, &v.Email, &v.Role, &v.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return v, nil
}
