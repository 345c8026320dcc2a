// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// TestSalt is the session salt used by test fixtures
const TestSalt = "test-session-salt"

// Epoch is the fixed "now" handed to manual clocks in tests
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// SetupTestDB creates a fresh embedded database with the full schema.
// It is removed when the test ends.
func SetupTestDB(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db.NewStore(conn, db.DialectSQLite)
}

// Window returns start and end bounds relative to Epoch
func Window(startOffset, endOffset time.Duration) (*time.Time, *time.Time) {
	start, end := Epoch.Add(startOffset), Epoch.Add(endOffset)
	return &start, &end
}

// CreateTestElection inserts an election with the given bounds
func CreateTestElection(t *testing.T, store *db.Store, name string, start, end *time.Time) models.Election {
	t.Helper()

	e := models.Election{
		ID:        uuid.NewString(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		CreatedAt: Epoch,
	}
	if err := store.CreateElection(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// AddTestCandidate adds a candidate to an election, as if before it opened
func AddTestCandidate(t *testing.T, store *db.Store, electionID, name string) models.Candidate {
	t.Helper()

	c := models.Candidate{ID: uuid.NewString(), ElectionID: electionID, Name: name, Party: "Independent"}
	if err := store.CreateCandidate(context.Background(), c, time.Time{}); err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c
}

// CreateTestVoter registers a voter and returns it with its session token
func CreateTestVoter(t *testing.T, store *db.Store, name, role string) (models.Voter, string) {
	t.Helper()

	v := models.Voter{
		ID:         uuid.NewString(),
		ExternalID: uuid.NewString(),
		Name:       name,
		Email:      uuid.NewString() + "@example.com",
		Role:       role,
		CreatedAt:  Epoch,
	}
	if err := store.CreateVoter(context.Background(), v); err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	return v, auth.GenerateSessionToken(v.ID, TestSalt)
}

// CastTestVote writes a vote directly, bypassing the ledger
func CastTestVote(t *testing.T, store *db.Store, electionID, voterID, candidateID string) {
	t.Helper()

	err := store.InsertVote(context.Background(), models.Vote{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		VotedAt:     Epoch,
	})
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// CountAudit returns the number of audit entries with the action
func CountAudit(t *testing.T, store *db.Store, action string) int {
	t.Helper()

	_, total, err := store.ListAuditEntries(context.Background(), db.AuditFilter{Action: action}, 1, 0)
	if err != nil {
		t.Fatalf("Failed to count audit entries: %v", err)
	}
	return total
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AsVoter attaches the voter's identity, as RequireSession would
func AsVoter(req *http.Request, v models.Voter) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{
		VoterID: v.ID,
		Name:    v.Name,
		Role:    v.Role,
	}))
}

// Bearer returns the Authorization header for a session token
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
