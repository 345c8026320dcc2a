// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"testing"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/results"
	"github.com/danielhkuo/quickly-vote/testutil"
)

// testEnv wires every handler over one embedded database and a manual clock
type testEnv struct {
	store *db.Store
	clock *election.ManualClock

	voting    *VotingHandler
	results   *ResultsHandler
	elections *ElectionHandler
	voters    *VoterHandler
	audit     *AuditHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testutil.SetupTestDB(t)
	clock := election.NewManualClock(testutil.Epoch)
	rec := audit.NewRecorder(store, clock, 0)

	return &testEnv{
		store:     store,
		clock:     clock,
		voting:    NewVotingHandler(ledger.New(store, clock, rec, nil)),
		results:   NewResultsHandler(results.NewAggregator(store, clock, nil), rec),
		elections: NewElectionHandler(store, clock, rec),
		voters:    NewVoterHandler(store, clock, rec, testutil.TestSalt),
		audit:     NewAuditHandler(store),
	}
}
