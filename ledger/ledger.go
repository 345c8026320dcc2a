// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/notify"
)

// ErrAlreadyVoted is returned when the voter already holds a vote in the election.
var ErrAlreadyVoted = errors.New("voter has already voted in this election")

// Reason classifies a rejected vote.
type Reason string

const (
	ReasonInvalid           Reason = "invalid"
	ReasonNotFound          Reason = "not_found"
	ReasonNotActive         Reason = "not_active"
	ReasonCandidateMismatch Reason = "candidate_mismatch"
)

// RejectedError is returned when a vote fails validation. Nothing was written.
type RejectedError struct {
	Reason Reason
	Msg    string
}

func (e *RejectedError) Error() string {
	return e.Msg
}

func reject(r Reason, msg string) error {
	return &RejectedError{Reason: r, Msg: msg}
}

// IsRejected reports whether err is a RejectedError with the given reason.
func IsRejected(err error, r Reason) bool {
	var rej *RejectedError
	return errors.As(err, &rej) && rej.Reason == r
}

// Store is the persistence the ledger needs.
type Store interface {
	ElectionByID(ctx context.Context, id string) (models.Election, error)
	CandidateByID(ctx context.Context, id string) (models.Candidate, error)
	HasVoted(ctx context.Context, electionID, voterID string) (bool, error)
	InsertVote(ctx context.Context, v models.Vote) error
}

// Notifier receives confirmations of committed votes. Enqueue must not block.
type Notifier interface {
	Enqueue(m notify.Message)
}

// Receipt describes a committed vote.
type Receipt struct {
	VoteID        string
	ElectionID    string
	ElectionName  string
	CandidateID   string
	CandidateName string
	VotedAt       time.Time
}

type Ledger struct {
	store    Store
	clock    election.Clock
	audit    audit.Logger
	notifier Notifier
}

// New builds a ledger. notifier may be nil.
func New(store Store, clock election.Clock, auditLog audit.Logger, notifier Notifier) *Ledger {
	return &Ledger{store: store, clock: clock, audit: auditLog, notifier: notifier}
}

// CastVote records one vote for voterID. At most one vote per voter and
// election is ever stored, however many calls race.
func (l *Ledger) CastVote(ctx context.Context, voterID, electionID, candidateID string) (receipt Receipt, err error) {
	defer func() {
		l.audit.Log(ctx, voterID, audit.ActionVoteAttempt,
			audit.Fields("electionId", electionID, "outcome", Outcome(err)))
	}()

	if voterID == "" || electionID == "" || candidateID == "" {
		return Receipt{}, reject(ReasonInvalid, "voter, election and candidate are required")
	}

	e, err := l.store.ElectionByID(ctx, electionID)
	if errors.Is(err, db.ErrNotFound) {
		return Receipt{}, reject(ReasonNotFound, "election not found")
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to load election: %w", err)
	}

	c, err := l.store.CandidateByID(ctx, candidateID)
	if errors.Is(err, db.ErrNotFound) {
		return Receipt{}, reject(ReasonNotFound, "candidate not found")
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to load candidate: %w", err)
	}

	now := l.clock.Now()
	if state := election.Resolve(now, e.StartDate, e.EndDate); state != election.Active {
		return Receipt{}, reject(ReasonNotActive, fmt.Sprintf("election is %s", state))
	}

	if c.ElectionID != electionID {
		return Receipt{}, reject(ReasonCandidateMismatch, "candidate does not belong to this election")
	}

	// Fast path only; the insert below decides
	voted, err := l.store.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return Receipt{}, err
	}
	if voted {
		return Receipt{}, ErrAlreadyVoted
	}

	v := models.Vote{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		VotedAt:     now.UTC(),
	}
	if err := l.store.InsertVote(ctx, v); err != nil {
		if errors.Is(err, db.ErrDuplicateVote) {
			return Receipt{}, ErrAlreadyVoted
		}
		return Receipt{}, err
	}

	l.audit.Log(ctx, voterID, audit.ActionVoteCast,
		audit.Fields("electionId", electionID, "voteId", v.ID))

	if l.notifier != nil {
		l.notifier.Enqueue(notify.Message{
			VoterID:       voterID,
			ElectionName:  e.Name,
			CandidateName: c.Name,
			VotedAt:       v.VotedAt,
		})
	}

	return Receipt{
		VoteID:        v.ID,
		ElectionID:    electionID,
		ElectionName:  e.Name,
		CandidateID:   c.ID,
		CandidateName: c.Name,
		VotedAt:       v.VotedAt,
	}, nil
}

// Outcome maps a CastVote result to its audit category.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, ErrAlreadyVoted) {
		return "already_voted"
	}
	var rej *RejectedError
	if errors.As(err, &rej) {
		return string(rej.Reason)
	}
	return "error"
}
