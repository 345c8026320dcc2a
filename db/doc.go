// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation and queries.

# Connections

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):

	conn, err := db.Open(ctx, db.DialectPostgres, cfg.DatabaseURL)

SQLite connections enable foreign keys and a busy timeout, and are limited
to a single open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - voter: Directory entries referenced by votes and audit entries
  - election: Name and UTC bounds; no status column
  - candidate: Choices, unique by name within an election
  - vote: One row per (election, voter), enforced by uq_vote_election_voter
  - audit_log: Append-only security events

# Relationships

	election 1──* candidate
	election 1──* vote
	candidate 1──* vote
	voter 1──* vote
	voter 1──* audit_log (SET NULL on delete)

# Conflicts

Unique violations are decoded per engine and surfaced as sentinels:

  - ErrDuplicateVote: uq_vote_election_voter only
  - ErrDuplicate: election name, candidate name, voter email or external id

Any other driver error is wrapped and returned as is.
*/
package db
