// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger casts votes.

A vote is accepted only while its election is Active and only for a
candidate of that election. Each voter holds at most one vote per election;
the unique constraint on the vote table is the authority, and a losing
concurrent insert surfaces as ErrAlreadyVoted. Validation failures are
reported as *RejectedError with a Reason.

Every call to CastVote leaves a VoteAttempt audit entry carrying the
election id and outcome. Committed votes add a VoteCast entry and a
confirmation is enqueued with the Notifier.
*/
package ledger
