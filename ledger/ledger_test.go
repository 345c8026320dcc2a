// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/notify"
)

type entry struct {
	userID  string
	action  audit.Action
	details string
}

type memAudit struct {
	mu      sync.Mutex
	entries []entry
}

func (m *memAudit) Log(_ context.Context, userID string, action audit.Action, details string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{userID, action, details})
}

func (m *memAudit) count(action audit.Action) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.action == action {
			n++
		}
	}
	return n
}

func (m *memAudit) last() entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

type memNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *memNotifier) Enqueue(m notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, m)
}

func (n *memNotifier) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

// racingStore always misses the pre-check, like a request that lost the race.
type racingStore struct {
	*db.Store
}

func (racingStore) HasVoted(context.Context, string, string) (bool, error) {
	return false, nil
}

type failingStore struct {
	*db.Store
}

func (failingStore) InsertVote(context.Context, models.Vote) error {
	return errors.New("disk full")
}

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *db.Store
	clock     *election.ManualClock
	audit     *memAudit
	notifier  *memNotifier
	ledger    *Ledger
	election  models.Election
	candidate models.Candidate
	other     models.Candidate
	voter     models.Voter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DialectSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(ctx, conn))

	f := &fixture{
		store:    db.NewStore(conn, db.DialectSQLite),
		clock:    election.NewManualClock(base),
		audit:    &memAudit{},
		notifier: &memNotifier{},
	}

	start, end := base.Add(-time.Hour), base.Add(time.Hour)
	f.election = f.createElection(t, "General", &start, &end)
	f.candidate = f.createCandidate(t, f.election.ID, "Alice")

	future, later := base.Add(24*time.Hour), base.Add(48*time.Hour)
	otherElection := f.createElection(t, "Other", &future, &later)
	f.other = f.createCandidate(t, otherElection.ID, "Bob")

	f.voter = f.createVoter(t, "carol")
	f.ledger = New(f.store, f.clock, f.audit, f.notifier)
	return f
}

func (f *fixture) createElection(t *testing.T, name string, start, end *time.Time) models.Election {
	t.Helper()
	e := models.Election{ID: uuid.NewString(), Name: name, StartDate: start, EndDate: end, CreatedAt: base}
	require.NoError(t, f.store.CreateElection(context.Background(), e))
	return e
}

func (f *fixture) createCandidate(t *testing.T, electionID, name string) models.Candidate {
	t.Helper()
	c := models.Candidate{ID: uuid.NewString(), ElectionID: electionID, Name: name, Party: "Independent"}
	// Fixtures set up the ballot before any window opens
	require.NoError(t, f.store.CreateCandidate(context.Background(), c, time.Time{}))
	return c
}

func (f *fixture) createVoter(t *testing.T, name string) models.Voter {
	t.Helper()
	v := models.Voter{
		ID:         uuid.NewString(),
		ExternalID: "ext-" + name,
		Name:       name,
		Email:      name + "@example.com",
		Role:       models.RoleVoter,
		CreatedAt:  base,
	}
	require.NoError(t, f.store.CreateVoter(context.Background(), v))
	return v
}

func TestCastVote_Success(t *testing.T) {
	f := newFixture(t)

	r, err := f.ledger.CastVote(context.Background(), f.voter.ID, f.election.ID, f.candidate.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, r.VoteID)
	assert.Equal(t, "General", r.ElectionName)
	assert.Equal(t, "Alice", r.CandidateName)
	assert.Equal(t, f.candidate.ID, r.CandidateID)
	assert.True(t, r.VotedAt.Equal(base))

	assert.Equal(t, 1, f.audit.count(audit.ActionVoteAttempt))
	assert.Equal(t, 1, f.audit.count(audit.ActionVoteCast))
	assert.Equal(t, 1, f.notifier.len())
	assert.Equal(t, "Alice", f.notifier.msgs[0].CandidateName)

	voted, err := f.store.HasVoted(context.Background(), f.election.ID, f.voter.ID)
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestCastVote_Retry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.voter.ID, f.election.ID, f.candidate.ID)
	require.NoError(t, err)

	_, err = f.ledger.CastVote(ctx, f.voter.ID, f.election.ID, f.candidate.ID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	assert.Equal(t, 2, f.audit.count(audit.ActionVoteAttempt))
	assert.Equal(t, 1, f.audit.count(audit.ActionVoteCast))
	assert.Equal(t, 1, f.notifier.len())
	assert.Contains(t, f.audit.last().details, "outcome=already_voted")
}

func TestCastVote_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		args    func(f *fixture) (voter, election, candidate string)
		reason  Reason
	}{
		{
			name:   "missing candidate id",
			args:   func(f *fixture) (string, string, string) { return f.voter.ID, f.election.ID, "" },
			reason: ReasonInvalid,
		},
		{
			name:   "missing voter",
			args:   func(f *fixture) (string, string, string) { return "", f.election.ID, f.candidate.ID },
			reason: ReasonInvalid,
		},
		{
			name:   "unknown election",
			args:   func(f *fixture) (string, string, string) { return f.voter.ID, uuid.NewString(), f.candidate.ID },
			reason: ReasonNotFound,
		},
		{
			name:   "unknown candidate",
			args:   func(f *fixture) (string, string, string) { return f.voter.ID, f.election.ID, uuid.NewString() },
			reason: ReasonNotFound,
		},
		{
			name:    "before start",
			prepare: func(f *fixture) { f.clock.Set(base.Add(-2 * time.Hour)) },
			args:    func(f *fixture) (string, string, string) { return f.voter.ID, f.election.ID, f.candidate.ID },
			reason:  ReasonNotActive,
		},
		{
			name:    "after end",
			prepare: func(f *fixture) { f.clock.Set(base.Add(2 * time.Hour)) },
			args:    func(f *fixture) (string, string, string) { return f.voter.ID, f.election.ID, f.candidate.ID },
			reason:  ReasonNotActive,
		},
		{
			name:   "candidate of another election",
			args:   func(f *fixture) (string, string, string) { return f.voter.ID, f.election.ID, f.other.ID },
			reason: ReasonCandidateMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.prepare != nil {
				tt.prepare(f)
			}

			voter, electionID, candidate := tt.args(f)
			_, err := f.ledger.CastVote(context.Background(), voter, electionID, candidate)

			require.Error(t, err)
			assert.True(t, IsRejected(err, tt.reason), "got %v", err)
			assert.Equal(t, string(tt.reason), Outcome(err))

			assert.Equal(t, 1, f.audit.count(audit.ActionVoteAttempt))
			assert.Equal(t, 0, f.audit.count(audit.ActionVoteCast))
			assert.Equal(t, 0, f.notifier.len())
		})
	}
}

func TestCastVote_UnboundedElectionIsNotActive(t *testing.T) {
	f := newFixture(t)
	e := f.createElection(t, "Draft", nil, nil)
	c := f.createCandidate(t, e.ID, "Dan")

	_, err := f.ledger.CastVote(context.Background(), f.voter.ID, e.ID, c.ID)
	assert.True(t, IsRejected(err, ReasonNotActive))
}

func TestCastVote_AttemptNeverLogsCandidate(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.CastVote(context.Background(), f.voter.ID, f.election.ID, f.candidate.ID)
	require.NoError(t, err)

	for _, e := range f.audit.entries {
		assert.False(t, strings.Contains(e.details, f.candidate.ID), "%s leaks candidate: %s", e.action, e.details)
	}
}

func TestCastVote_ConstraintDecidesUnderRace(t *testing.T) {
	f := newFixture(t)
	l := New(racingStore{f.store}, f.clock, f.audit, f.notifier)
	ctx := context.Background()

	_, err := l.CastVote(ctx, f.voter.ID, f.election.ID, f.candidate.ID)
	require.NoError(t, err)

	_, err = l.CastVote(ctx, f.voter.ID, f.election.ID, f.candidate.ID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, 1, f.audit.count(audit.ActionVoteCast))
}

func TestCastVote_StorageErrorIsNotConflict(t *testing.T) {
	f := newFixture(t)
	l := New(failingStore{f.store}, f.clock, f.audit, f.notifier)

	_, err := l.CastVote(context.Background(), f.voter.ID, f.election.ID, f.candidate.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, "error", Outcome(err))
	assert.Equal(t, 0, f.notifier.len())
}

func TestCastVote_Concurrent(t *testing.T) {
	f := newFixture(t)
	l := New(racingStore{f.store}, f.clock, f.audit, f.notifier)

	const casters = 20
	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32

	for i := 0; i < casters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.CastVote(context.Background(), f.voter.ID, f.election.ID, f.candidate.ID)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(casters-1), conflicts.Load())

	tallies, err := f.store.TallyVotes(context.Background(), f.election.ID)
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, 1, tallies[0].Votes)
}

func TestCastVote_WithRecorder(t *testing.T) {
	f := newFixture(t)
	rec := audit.NewRecorder(f.store, f.clock, 0)
	l := New(f.store, f.clock, rec, nil)
	ctx := context.Background()

	_, err := l.CastVote(ctx, f.voter.ID, f.election.ID, f.candidate.ID)
	require.NoError(t, err)
	_, err = l.CastVote(ctx, f.voter.ID, f.election.ID, f.candidate.ID)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	_, attempts, err := f.store.ListAuditEntries(ctx, db.AuditFilter{Action: string(audit.ActionVoteAttempt)}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	cast, casts, err := f.store.ListAuditEntries(ctx, db.AuditFilter{Action: string(audit.ActionVoteCast)}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, casts)
	require.NotNil(t, cast[0].UserID)
	assert.Equal(t, f.voter.ID, *cast[0].UserID)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "already_voted", Outcome(ErrAlreadyVoted))
	assert.Equal(t, "not_active", Outcome(reject(ReasonNotActive, "closed")))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
