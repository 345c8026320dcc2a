// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/quickly-vote/models"
)

// AuditFilter narrows ListAuditEntries. Empty fields match everything.
type AuditFilter struct {
	UserID string
	Action string
}

func (s *Store) InsertAuditEntry(ctx context.Context, e models.AuditLogEntry) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO audit_log (id, created_at, user_id, action, details)
		VALUES (?, ?, ?, ?, ?)
	`), e.ID, e.Timestamp.UTC(), e.UserID, e.Action, e.Details)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns one page of entries, newest first, and the total
// number of matching entries.
func (s *Store) ListAuditEntries(ctx context.Context, f AuditFilter, limit, offset int) ([]models.AuditLogEntry, int, error) {
	limit, offset = limitOffset(limit, offset)

	var conds []string
	var args []any
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, f.Action)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM audit_log `+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, created_at, user_id, action, details
		FROM audit_log
		`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditLogEntry{}
	for rows.Next() {
		var e models.AuditLogEntry
		var userID, details sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &userID, &e.Action, &details); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if userID.Valid {
			e.UserID = &userID.String
		}
		e.Details = details.String
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, total, nil
}
