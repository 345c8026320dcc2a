// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

type VoterHandler struct {
	store *db.Store
	clock election.Clock
	audit audit.Logger
	salt  string
}

func NewVoterHandler(store *db.Store, clock election.Clock, auditLog audit.Logger, sessionSalt string) *VoterHandler {
	return &VoterHandler{store: store, clock: clock, audit: auditLog, salt: sessionSalt}
}

// RegisterVoter handles POST /voters
// Returns the voter id and the session token for that voter
func (h *VoterHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if len(name) > maxNameLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is too long")
		return
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is invalid")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleVoter
	}
	if !models.ValidRole(role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be voter, admin or auditor")
		return
	}

	v := models.Voter{
		ID:         uuid.NewString(),
		ExternalID: strings.TrimSpace(req.ExternalID),
		Name:       name,
		Email:      email,
		Role:       role,
		CreatedAt:  h.clock.Now(),
	}
	if v.ExternalID == "" {
		v.ExternalID = v.ID
	}

	err := h.store.CreateVoter(r.Context(), v)
	if errors.Is(err, db.ErrDuplicate) {
		middleware.ErrorResponse(w, http.StatusConflict, "A voter with this email or external id already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("voter registered", "voter_id", v.ID, "role", v.Role)
	h.audit.Log(r.Context(), callerID(r), audit.ActionVoterRegistered,
		audit.Fields("voterId", v.ID, "role", v.Role))

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{
		VoterID: v.ID,
		Token:   auth.GenerateSessionToken(v.ID, h.salt),
	})
}

// Me handles GET /voters/me
func (h *VoterHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Missing session")
		return
	}

	v, err := h.store.VoterByID(r.Context(), id.VoterID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}
