// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

// TestConcurrentVotesSameVoter verifies that simultaneous casts by one voter
// store exactly one vote and every other request gets 409
func TestConcurrentVotesSameVoter(t *testing.T) {
	env := newTestEnv(t)

	start, end := testutil.Window(-time.Hour, time.Hour)
	e := testutil.CreateTestElection(t, env.store, "Race", start, end)
	a := testutil.AddTestCandidate(t, env.store, e.ID, "A")
	b := testutil.AddTestCandidate(t, env.store, e.ID, "B")
	voter, _ := testutil.CreateTestVoter(t, env.store, "Racer", models.RoleVoter)

	const attempts = 12
	var created, conflicts, other atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			candidate := a.ID
			if i%2 == 1 {
				candidate = b.ID
			}
			body := models.CastVoteRequest{ElectionID: e.ID, CandidateID: candidate}
			req := testutil.AsVoter(testutil.MakeRequest("POST", "/votes", body, nil), voter)
			w := httptest.NewRecorder()

			env.voting.CastVote(w, req)

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				other.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted vote, got %d", created.Load())
	}
	if conflicts.Load() != attempts-1 {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflicts.Load())
	}
	if other.Load() != 0 {
		t.Errorf("Expected no other statuses, got %d", other.Load())
	}

	tallies, err := env.store.TallyVotes(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("Failed to tally: %v", err)
	}
	total := 0
	for _, tally := range tallies {
		total += tally.Votes
	}
	if total != 1 {
		t.Errorf("Expected 1 stored vote, got %d", total)
	}
}

// TestConcurrentVotesDifferentVoters verifies that simultaneous casts by
// different voters are all accepted
func TestConcurrentVotesDifferentVoters(t *testing.T) {
	env := newTestEnv(t)

	start, end := testutil.Window(-time.Hour, time.Hour)
	e := testutil.CreateTestElection(t, env.store, "Crowd", start, end)
	c := testutil.AddTestCandidate(t, env.store, e.ID, "Popular")

	numVoters := 10
	voters := make([]models.Voter, numVoters)
	for i := range voters {
		voters[i], _ = testutil.CreateTestVoter(t, env.store, "Voter", models.RoleVoter)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for _, v := range voters {
		wg.Add(1)
		go func(v models.Voter) {
			defer wg.Done()

			body := models.CastVoteRequest{ElectionID: e.ID, CandidateID: c.ID}
			w := httptest.NewRecorder()
			env.voting.CastVote(w, testutil.AsVoter(testutil.MakeRequest("POST", "/votes", body, nil), v))

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(v)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	stats, err := env.store.ElectionStatsByID(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("Failed to load stats: %v", err)
	}
	if stats.VoteCount != numVoters {
		t.Errorf("Expected %d votes in database, got %d", numVoters, stats.VoteCount)
	}
}
