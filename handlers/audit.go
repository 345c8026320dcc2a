// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

type AuditHandler struct {
	store *db.Store
}

func NewAuditHandler(store *db.Store) *AuditHandler {
	return &AuditHandler{store: store}
}

// ListAll handles GET /audit-logs
func (h *AuditHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, db.AuditFilter{})
}

// ListByUser handles GET /audit-logs/user/{id}
func (h *AuditHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, db.AuditFilter{UserID: r.PathValue("id")})
}

// ListByAction handles GET /audit-logs/by-action?action=
func (h *AuditHandler) ListByAction(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "action is required")
		return
	}
	h.list(w, r, db.AuditFilter{Action: action})
}

func (h *AuditHandler) list(w http.ResponseWriter, r *http.Request, f db.AuditFilter) {
	page, pageSize, err := middleware.Pagination(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, total, err := h.store.ListAuditEntries(r.Context(), f, pageSize, (page-1)*pageSize)
	if err != nil {
		slog.Error("failed to list audit entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AuditLogListResponse{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    entries,
	})
}
