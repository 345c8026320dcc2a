// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique name, email or external id is taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrDuplicateVote is returned when the voter already has a vote in the election.
	ErrDuplicateVote = errors.New("duplicate vote")
	// ErrInUse is returned when deleting an election that has candidates or votes.
	ErrInUse = errors.New("record is referenced")
	// ErrNotScheduled is returned when an election that has opened or closed is modified.
	ErrNotScheduled = errors.New("election is not scheduled")
)

// constraint identifies a unique constraint on both engines: PostgreSQL
// reports the constraint name, SQLite reports the column list.
type constraint struct {
	name    string
	columns string
}

var (
	uqVoteElectionVoter     = constraint{"uq_vote_election_voter", "vote.election_id, vote.voter_id"}
	uqElectionName          = constraint{"uq_election_name", "election.name"}
	uqCandidateElectionName = constraint{"uq_candidate_election_name", "candidate.election_id, candidate.name"}
	uqVoterExternalID       = constraint{"uq_voter_external_id", "voter.external_id"}
	uqVoterEmail            = constraint{"uq_voter_email", "voter.email"}
)

const pqUniqueViolation = "23505"

// violates reports whether err is a unique violation of exactly c.
func violates(err error, c constraint) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation && pqErr.Constraint == c.name
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
			strings.Contains(sqErr.Error(), "UNIQUE constraint failed: "+c.columns)
	}

	return false
}

func violatesAny(err error, cs ...constraint) bool {
	for _, c := range cs {
		if violates(err, c) {
			return true
		}
	}
	return false
}
