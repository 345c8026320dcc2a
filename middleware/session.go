// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	VoterID string
	Name    string
	Role    string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by RequireSession.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// VoterLookup loads voters for session checks.
type VoterLookup interface {
	VoterByID(ctx context.Context, id string) (models.Voter, error)
}

// Sessions authenticates bearer tokens and enforces roles.
type Sessions struct {
	voters VoterLookup
	salt   string
	audit  audit.Logger
}

func NewSessions(voters VoterLookup, salt string, auditLog audit.Logger) *Sessions {
	return &Sessions{voters: voters, salt: salt, audit: auditLog}
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// token with 401 and stores the caller's Identity in the request context.
func (s *Sessions) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Missing session token")
			return
		}

		voterID, err := auth.ParseSessionToken(token, s.salt)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		v, err := s.voters.VoterByID(r.Context(), voterID)
		if errors.Is(err, db.ErrNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "Unknown voter")
			return
		}
		if err != nil {
			slog.Error("failed to load session voter", "error", err, "voter_id", voterID)
			ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{VoterID: v.ID, Name: v.Name, Role: v.Role})
		next(w, r.WithContext(ctx))
	}
}

// RequireRole allows only callers holding one of roles. It must run inside
// RequireSession. Denials get 403 and an AccessDenied audit entry.
func (s *Sessions) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				ErrorResponse(w, http.StatusUnauthorized, "Missing session")
				return
			}

			if !slices.Contains(roles, id.Role) {
				s.audit.Log(r.Context(), id.VoterID, audit.ActionAccessDenied, audit.Fields(
					"method", r.Method,
					"path", r.URL.Path,
					"role", id.Role,
					"ip", auth.HashIP(GetClientIP(r), s.salt),
				))
				ErrorResponse(w, http.StatusForbidden, "Insufficient role")
				return
			}

			next(w, r)
		}
	}
}

// Authorize is RequireSession followed by RequireRole(roles...).
func (s *Sessions) Authorize(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return s.RequireSession(s.RequireRole(roles...)(next))
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
