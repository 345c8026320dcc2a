// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/models"
)

// Action is an audit action code.
type Action string

const (
	ActionVoteAttempt      Action = "VoteAttempt"
	ActionVoteCast         Action = "VoteCast"
	ActionElectionCreated  Action = "ElectionCreated"
	ActionElectionUpdated  Action = "ElectionUpdated"
	ActionElectionDeleted  Action = "ElectionDeleted"
	ActionCandidateCreated Action = "CandidateCreated"
	ActionVoterRegistered  Action = "VoterRegistered"
	ActionResultsViewed    Action = "ResultsViewed"
	ActionAccessDenied     Action = "AccessDenied"
)

// DefaultMaxDetailLength bounds the details column, in runes.
const DefaultMaxDetailLength = 1000

// Logger records audit entries. Implementations never fail the caller.
type Logger interface {
	Log(ctx context.Context, userID string, action Action, details string)
}

// Writer records an entry at an instant chosen by the caller.
type Writer interface {
	LogAt(ctx context.Context, at time.Time, userID string, action Action, details string)
}

// Store is the persistence the Recorder needs.
type Store interface {
	InsertAuditEntry(ctx context.Context, e models.AuditLogEntry) error
	VoterExists(ctx context.Context, id string) (bool, error)
}

// Recorder writes audit entries synchronously.
type Recorder struct {
	store     Store
	clock     election.Clock
	maxDetail int
}

func NewRecorder(store Store, clock election.Clock, maxDetail int) *Recorder {
	if maxDetail <= 0 {
		maxDetail = DefaultMaxDetailLength
	}
	return &Recorder{store: store, clock: clock, maxDetail: maxDetail}
}

// Log appends an entry stamped with the current time.
func (r *Recorder) Log(ctx context.Context, userID string, action Action, details string) {
	r.LogAt(ctx, r.clock.Now(), userID, action, details)
}

// LogAt appends an entry that happened at at. An empty userID records a
// system action. Entries for a user id that no longer exists are dropped.
// Storage errors are logged and swallowed.
func (r *Recorder) LogAt(ctx context.Context, at time.Time, userID string, action Action, details string) {
	entry := models.AuditLogEntry{
		ID:        uuid.NewString(),
		Timestamp: at.UTC(),
		Action:    string(action),
		Details:   Truncate(details, r.maxDetail),
	}

	if userID != "" {
		exists, err := r.store.VoterExists(ctx, userID)
		if err != nil {
			slog.Error("audit: failed to check user", "error", err, "action", action)
			return
		}
		if !exists {
			slog.Debug("audit: dropping entry for unknown user", "user_id", userID, "action", action)
			return
		}
		entry.UserID = &userID
	}

	if err := r.store.InsertAuditEntry(ctx, entry); err != nil {
		slog.Error("audit: failed to write entry", "error", err, "action", action)
	}
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Fields renders key/value pairs as "k1=v1 k2=v2" for the details column.
// A trailing key without a value is ignored.
func Fields(kv ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv[i])
		b.WriteByte('=')
		b.WriteString(kv[i+1])
	}
	return b.String()
}
