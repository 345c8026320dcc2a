// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

Each handler is a struct holding the services it needs:

  - VotingHandler: vote casting through the ledger
  - ResultsHandler: results of closed elections
  - ElectionHandler: election and candidate management, listings
  - VoterHandler: voter registration and identity
  - AuditHandler: audit log queries

Handlers expect the router to have run middleware.RequireSession (and
RequireRole where needed); the caller is read with middleware.IdentityFrom.

# Election Lifecycle

An election has no stored status. It is Scheduled before its start instant
or while either bound is unset, Active from start through end, and Closed
afterwards. Elections and their candidates can only change while Scheduled.

	POST   /elections                 → CreateElection
	PUT    /elections/{id}            → UpdateElection (Scheduled only)
	DELETE /elections/{id}            → DeleteElection (no candidates or votes)
	POST   /elections/{id}/candidates → CreateCandidate (Scheduled only)

Dates are RFC3339 or naive timestamps read in the X-UTC-Offset zone.

# Voting

	POST /votes → CastVote

201 on success, 400 when the election is not Active or the candidate does
not belong to it, 404 for unknown ids, 409 when the voter already voted.

# Results

	GET /elections/{id}/results → GetResults

403 until the election is Closed.
*/
package handlers
