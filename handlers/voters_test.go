// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func TestRegisterVoter(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := testutil.CreateTestVoter(t, env.store, "Admin", models.RoleAdmin)

	tests := []struct {
		name           string
		body           models.RegisterVoterRequest
		expectedStatus int
		wantRole       string
	}{
		{
			name:           "default role",
			body:           models.RegisterVoterRequest{ExternalID: "emp-1", Name: "Alice", Email: "Alice@Example.com"},
			expectedStatus: http.StatusCreated,
			wantRole:       models.RoleVoter,
		},
		{
			name:           "auditor without external id",
			body:           models.RegisterVoterRequest{Name: "Audrey", Email: "audrey@example.com", Role: models.RoleAuditor},
			expectedStatus: http.StatusCreated,
			wantRole:       models.RoleAuditor,
		},
		{
			name:           "duplicate email",
			body:           models.RegisterVoterRequest{ExternalID: "emp-2", Name: "Alice Two", Email: "alice@example.com"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "duplicate external id",
			body:           models.RegisterVoterRequest{ExternalID: "emp-1", Name: "Copy", Email: "copy@example.com"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown role",
			body:           models.RegisterVoterRequest{Name: "Root", Email: "root@example.com", Role: "superuser"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			body:           models.RegisterVoterRequest{Name: "Bob", Email: "not-an-email"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing name",
			body:           models.RegisterVoterRequest{Email: "anon@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AsVoter(testutil.MakeRequest("POST", "/voters", tt.body, nil), admin)
			w := httptest.NewRecorder()

			env.voters.RegisterVoter(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.RegisterVoterResponse
			testutil.AssertJSON(t, w, &resp)

			voterID, err := auth.ParseSessionToken(resp.Token, testutil.TestSalt)
			if err != nil {
				t.Fatalf("Returned token does not verify: %v", err)
			}
			if voterID != resp.VoterID {
				t.Errorf("Token names %s, expected %s", voterID, resp.VoterID)
			}

			v, err := env.store.VoterByID(context.Background(), resp.VoterID)
			if err != nil {
				t.Fatalf("Voter not stored: %v", err)
			}
			if v.Role != tt.wantRole {
				t.Errorf("Expected role %s, got %s", tt.wantRole, v.Role)
			}
		})
	}

	if n := testutil.CountAudit(t, env.store, "VoterRegistered"); n != 2 {
		t.Errorf("Expected 2 VoterRegistered entries, got %d", n)
	}
}

func TestRegisterVoterNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("POST", "/voters", models.RegisterVoterRequest{Name: "Eve", Email: " Eve@Example.COM "}, nil)
	w := httptest.NewRecorder()
	env.voters.RegisterVoter(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	if _, err := env.store.VoterByEmail(context.Background(), "eve@example.com"); err != nil {
		t.Errorf("Expected lowercased email to be stored: %v", err)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	voter, _ := testutil.CreateTestVoter(t, env.store, "Vera", models.RoleVoter)

	w := httptest.NewRecorder()
	env.voters.Me(w, testutil.AsVoter(httptest.NewRequest("GET", "/voters/me", nil), voter))

	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.Voter
	testutil.AssertJSON(t, w, &got)
	if got.ID != voter.ID || got.Name != "Vera" || got.Role != models.RoleVoter {
		t.Errorf("Unexpected identity: %+v", got)
	}

	w = httptest.NewRecorder()
	env.voters.Me(w, httptest.NewRequest("GET", "/voters/me", nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
