// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CastVoteRequest: electionId, candidateId
  - ElectionRequest: name, startDate, endDate
  - CreateCandidateRequest: name, party
  - RegisterVoterRequest: externalId, name, email, role

# Response Types

  - CastVoteResponse: the vote receipt, echoing election and candidate names
  - ElectionListResponse / AuditLogListResponse: paginated envelopes
  - RegisterVoterResponse: voterId and session token
  - ErrorResponse: error, message

# Domain Types

  - Election: name and UTC bounds; no stored status
  - ElectionSummary: election with computed status and counts
  - Candidate, Voter, Vote, AuditLogEntry
  - ResultSet, CandidateTally: tallies for closed elections

All JSON fields are camelCase. Vote.VoterID is never serialized.
*/
package models
