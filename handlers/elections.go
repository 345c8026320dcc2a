// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

const (
	maxNameLength  = 200
	maxPartyLength = 100
)

type ElectionHandler struct {
	store *db.Store
	clock election.Clock
	audit audit.Logger
}

func NewElectionHandler(store *db.Store, clock election.Clock, auditLog audit.Logger) *ElectionHandler {
	return &ElectionHandler{store: store, clock: clock, audit: auditLog}
}

func (h *ElectionHandler) summary(s db.ElectionStats) models.ElectionSummary {
	return models.ElectionSummary{
		ElectionID:     s.ID,
		Name:           s.Name,
		StartDateUTC:   s.StartDate,
		EndDateUTC:     s.EndDate,
		Status:         election.Resolve(h.clock.Now(), s.StartDate, s.EndDate),
		CandidateCount: s.CandidateCount,
		VoteCount:      s.VoteCount,
	}
}

// ListElections handles GET /elections
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := middleware.Pagination(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	elections, total, err := h.store.ListElections(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		slog.Error("failed to list elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	items := make([]models.ElectionSummary, 0, len(elections))
	for _, e := range elections {
		items = append(items, h.summary(e))
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionListResponse{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    items,
	})
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ElectionStatsByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, h.summary(stats))
}

// parseElectionRequest validates the body of POST and PUT /elections
func parseElectionRequest(w http.ResponseWriter, r *http.Request) (name string, start, end *time.Time, ok bool) {
	var req models.ElectionRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return "", nil, nil, false
	}

	name = strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return "", nil, nil, false
	}
	if len(name) > maxNameLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is too long")
		return "", nil, nil, false
	}

	loc, err := middleware.ParseUTCOffset(r.Header.Get(middleware.UTCOffsetHeader))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid X-UTC-Offset header")
		return "", nil, nil, false
	}

	if start, err = parseTimestamp(req.StartDate, loc); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "startDate: "+err.Error())
		return "", nil, nil, false
	}
	if end, err = parseTimestamp(req.EndDate, loc); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "endDate: "+err.Error())
		return "", nil, nil, false
	}
	if start != nil && end != nil && !end.After(*start) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "endDate must be after startDate")
		return "", nil, nil, false
	}

	return name, start, end, true
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	name, start, end, ok := parseElectionRequest(w, r)
	if !ok {
		return
	}

	now := h.clock.Now()
	e := models.Election{
		ID:        uuid.NewString(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
	}

	err := h.store.CreateElection(r.Context(), e)
	if errors.Is(err, db.ErrDuplicate) {
		middleware.ErrorResponse(w, http.StatusConflict, "An election with this name already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	status := election.Resolve(now, start, end)
	logAttrs := []any{"election_id", e.ID, "status", status}
	if start != nil {
		logAttrs = append(logAttrs, "opens", humanize.RelTime(*start, now, "ago", "from now"))
	}
	slog.Info("election created", logAttrs...)

	h.audit.Log(r.Context(), callerID(r), audit.ActionElectionCreated,
		audit.Fields("electionId", e.ID, "name", e.Name))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: e.ID,
		Status:     status,
	})
}

// UpdateElection handles PUT /elections/{id}
// Only a Scheduled election can be changed.
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	current, ok := h.loadScheduled(w, r, electionID, "Only scheduled elections can be modified")
	if !ok {
		return
	}

	name, start, end, ok := parseElectionRequest(w, r)
	if !ok {
		return
	}

	current.Name, current.StartDate, current.EndDate = name, start, end
	err := h.store.UpdateElection(r.Context(), current, h.clock.Now())
	switch {
	case errors.Is(err, db.ErrDuplicate):
		middleware.ErrorResponse(w, http.StatusConflict, "An election with this name already exists")
		return
	case errors.Is(err, db.ErrNotScheduled):
		middleware.ErrorResponse(w, http.StatusConflict, "Only scheduled elections can be modified")
		return
	case errors.Is(err, db.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	case err != nil:
		slog.Error("failed to update election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.audit.Log(r.Context(), callerID(r), audit.ActionElectionUpdated, audit.Fields("electionId", electionID))

	stats, err := h.store.ElectionStatsByID(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to reload election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.summary(stats))
}

// DeleteElection handles DELETE /elections/{id}
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	err := h.store.DeleteElection(r.Context(), electionID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	case errors.Is(err, db.ErrInUse):
		middleware.ErrorResponse(w, http.StatusConflict, "Election has candidates or votes")
		return
	case err != nil:
		slog.Error("failed to delete election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.audit.Log(r.Context(), callerID(r), audit.ActionElectionDeleted, audit.Fields("electionId", electionID))
	w.WriteHeader(http.StatusNoContent)
}

// ListCandidates handles GET /elections/{id}/candidates
func (h *ElectionHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := h.store.ElectionByID(r.Context(), electionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	candidates, err := h.store.ListCandidates(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to list candidates", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// CreateCandidate handles POST /elections/{id}/candidates
func (h *ElectionHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, ok := h.loadScheduled(w, r, electionID, "Candidates can only be added to scheduled elections"); !ok {
		return
	}

	// Parse request
	var req models.CreateCandidateRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	party := strings.TrimSpace(req.Party)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(name) > maxNameLength || len(party) > maxPartyLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name or party is too long")
		return
	}

	c := models.Candidate{ID: uuid.NewString(), ElectionID: electionID, Name: name, Party: party}
	err := h.store.CreateCandidate(r.Context(), c, h.clock.Now())
	switch {
	case errors.Is(err, db.ErrDuplicate):
		middleware.ErrorResponse(w, http.StatusConflict, "A candidate with this name already exists in the election")
		return
	case errors.Is(err, db.ErrNotScheduled):
		middleware.ErrorResponse(w, http.StatusConflict, "Candidates can only be added to scheduled elections")
		return
	case errors.Is(err, db.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	case err != nil:
		slog.Error("failed to create candidate", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.audit.Log(r.Context(), callerID(r), audit.ActionCandidateCreated,
		audit.Fields("electionId", electionID, "candidateId", c.ID))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateCandidateResponse{CandidateID: c.ID})
}

// loadScheduled fetches an election and writes 404 or 409 unless it is Scheduled
func (h *ElectionHandler) loadScheduled(w http.ResponseWriter, r *http.Request, electionID, conflictMsg string) (models.Election, bool) {
	e, err := h.store.ElectionByID(r.Context(), electionID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return models.Election{}, false
	}
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Election{}, false
	}

	if election.Resolve(h.clock.Now(), e.StartDate, e.EndDate) != election.Scheduled {
		middleware.ErrorResponse(w, http.StatusConflict, conflictMsg)
		return models.Election{}, false
	}
	return e, true
}

// callerID returns the session voter id, or "" outside a session
func callerID(r *http.Request) string {
	id, _ := middleware.IdentityFrom(r.Context())
	return id.VoterID
}
