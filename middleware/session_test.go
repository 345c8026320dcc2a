// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

const testSalt = "session-salt"

type fakeVoters map[string]models.Voter

func (f fakeVoters) VoterByID(_ context.Context, id string) (models.Voter, error) {
	if id == "broken" {
		return models.Voter{}, errors.New("connection reset")
	}
	v, ok := f[id]
	if !ok {
		return models.Voter{}, db.ErrNotFound
	}
	return v, nil
}

type recordedEntry struct {
	userID  string
	action  audit.Action
	details string
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (f *fakeAudit) Log(_ context.Context, userID string, action audit.Action, details string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedEntry{userID, action, details})
}

func newTestSessions() (*Sessions, *fakeAudit) {
	voters := fakeVoters{
		"v-voter":   {ID: "v-voter", Name: "Vera", Role: models.RoleVoter},
		"v-admin":   {ID: "v-admin", Name: "Ada", Role: models.RoleAdmin},
		"v-auditor": {ID: "v-auditor", Name: "Aud", Role: models.RoleAuditor},
	}
	a := &fakeAudit{}
	return NewSessions(voters, testSalt, a), a
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "no identity", http.StatusTeapot)
		return
	}
	w.Write([]byte(id.VoterID + ":" + id.Role))
}

func TestRequireSession(t *testing.T) {
	s, _ := newTestSessions()
	h := s.RequireSession(whoAmI)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + auth.GenerateSessionToken("v-voter", testSalt), http.StatusOK, "v-voter:voter"},
		{"lowercase scheme", "bearer " + auth.GenerateSessionToken("v-admin", testSalt), http.StatusOK, "v-admin:admin"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + auth.GenerateSessionToken("v-voter", testSalt), http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"forged token", "Bearer " + auth.GenerateSessionToken("v-voter", "other-salt"), http.StatusUnauthorized, ""},
		{"unknown voter", "Bearer " + auth.GenerateSessionToken("v-ghost", testSalt), http.StatusUnauthorized, ""},
		{"lookup failure", "Bearer " + auth.GenerateSessionToken("broken", testSalt), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/voters/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	s, a := newTestSessions()
	h := s.Authorize(whoAmI, models.RoleAdmin, models.RoleAuditor)

	tests := []struct {
		voter      string
		wantStatus int
	}{
		{"v-admin", http.StatusOK},
		{"v-auditor", http.StatusOK},
		{"v-voter", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.voter, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/audit-logs", nil)
			req.Header.Set("Authorization", "Bearer "+auth.GenerateSessionToken(tt.voter, testSalt))
			req.RemoteAddr = "203.0.113.7:4444"
			w := httptest.NewRecorder()

			h(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	require.Len(t, a.entries, 1)
	denied := a.entries[0]
	assert.Equal(t, "v-voter", denied.userID)
	assert.Equal(t, audit.ActionAccessDenied, denied.action)
	assert.Contains(t, denied.details, "path=/audit-logs")
	assert.Contains(t, denied.details, "ip="+auth.HashIP("203.0.113.7", testSalt))
	assert.False(t, strings.Contains(denied.details, "203.0.113.7"), "client IP stored in clear")
}

func TestRequireRole_WithoutSession(t *testing.T) {
	s, a := newTestSessions()
	h := s.RequireRole(models.RoleAdmin)(whoAmI)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, a.entries)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{VoterID: "v1", Role: models.RoleVoter})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "v1", id.VoterID)
}
