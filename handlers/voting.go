// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// VoteCaster is implemented by *ledger.Ledger.
type VoteCaster interface {
	CastVote(ctx context.Context, voterID, electionID, candidateID string) (ledger.Receipt, error)
}

type VotingHandler struct {
	ledger VoteCaster
}

func NewVotingHandler(l VoteCaster) *VotingHandler {
	return &VotingHandler{ledger: l}
}

// CastVote handles POST /votes
// The voter is always the session identity, never a body field.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Missing session")
		return
	}

	// Parse request
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	receipt, err := h.ledger.CastVote(r.Context(), id.VoterID, req.ElectionID, req.CandidateID)
	if err != nil {
		writeVoteError(w, err, req.ElectionID)
		return
	}

	slog.Info("vote cast", "election_id", receipt.ElectionID, "vote_id", receipt.VoteID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Message:       "Vote recorded",
		ElectionID:    receipt.ElectionID,
		ElectionName:  receipt.ElectionName,
		CandidateID:   receipt.CandidateID,
		CandidateName: receipt.CandidateName,
		VotedAt:       receipt.VotedAt,
	})
}

func writeVoteError(w http.ResponseWriter, err error, electionID string) {
	if errors.Is(err, ledger.ErrAlreadyVoted) {
		slog.Info("duplicate vote rejected", "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this election")
		return
	}

	var rej *ledger.RejectedError
	if errors.As(err, &rej) {
		status := http.StatusBadRequest
		if rej.Reason == ledger.ReasonNotFound {
			status = http.StatusNotFound
		}
		middleware.ErrorResponse(w, status, rej.Error())
		return
	}

	slog.Error("failed to cast vote", "error", err, "election_id", electionID)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
}
