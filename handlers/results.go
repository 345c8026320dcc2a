// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/results"
)

// ResultsReader is implemented by *results.Aggregator.
type ResultsReader interface {
	GetResults(ctx context.Context, electionID string) (*models.ResultSet, error)
}

type ResultsHandler struct {
	results ResultsReader
	audit   audit.Logger
}

func NewResultsHandler(rr ResultsReader, auditLog audit.Logger) *ResultsHandler {
	return &ResultsHandler{results: rr, audit: auditLog}
}

// GetResults handles GET /elections/{id}/results
// Results are sealed until the election is closed, for every caller
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	rs, err := h.results.GetResults(r.Context(), electionID)
	switch {
	case errors.Is(err, results.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	case errors.Is(err, results.ErrNotClosed):
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are not available until the election closes")
		return
	case err != nil:
		slog.Error("failed to get results", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		h.audit.Log(r.Context(), id.VoterID, audit.ActionResultsViewed, audit.Fields("electionId", electionID))
	}

	middleware.JSONResponse(w, http.StatusOK, rs)
}
