// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/models"
)

var (
	ErrNotFound  = errors.New("election not found")
	ErrNotClosed = errors.New("election is not closed")
)

// Store is the read-only access the aggregator needs. It may be a replica.
type Store interface {
	ElectionByID(ctx context.Context, id string) (models.Election, error)
	TallyVotes(ctx context.Context, electionID string) ([]models.CandidateTally, error)
}

// SettleDelay is how long after the end results are tallied fresh on every
// read. A vote accepted just before the end may still be committing, so the
// cache is neither read nor written until the delay has passed.
const SettleDelay = time.Minute

// Cache holds result sets of settled elections. Those never change, so
// entries are never invalidated.
type Cache interface {
	Get(ctx context.Context, electionID string) (*models.ResultSet, bool, error)
	Set(ctx context.Context, rs *models.ResultSet) error
}

type Aggregator struct {
	store Store
	clock election.Clock
	cache Cache
}

// NewAggregator builds an aggregator. cache may be nil.
func NewAggregator(store Store, clock election.Clock, cache Cache) *Aggregator {
	return &Aggregator{store: store, clock: clock, cache: cache}
}

// GetResults tallies a closed election. Results are never returned for an
// election that is Scheduled or Active, whoever asks.
func (a *Aggregator) GetResults(ctx context.Context, electionID string) (*models.ResultSet, error) {
	e, err := a.store.ElectionByID(ctx, electionID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load election: %w", err)
	}

	// Gate before touching the cache or the tally
	now := a.clock.Now()
	if election.Resolve(now, e.StartDate, e.EndDate) != election.Closed {
		return nil, ErrNotClosed
	}
	cacheable := a.cache != nil && now.Sub(*e.EndDate) > SettleDelay

	if cacheable {
		rs, ok, err := a.cache.Get(ctx, electionID)
		if err != nil {
			slog.Warn("results cache read failed", "error", err, "election_id", electionID)
		} else if ok {
			return rs, nil
		}
	}

	tallies, err := a.store.TallyVotes(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}

	rs := Build(e, tallies)

	if cacheable {
		if err := a.cache.Set(ctx, rs); err != nil {
			slog.Warn("results cache write failed", "error", err, "election_id", electionID)
		}
	}

	return rs, nil
}

// Build assembles a result set for a closed election from raw tallies.
func Build(e models.Election, tallies []models.CandidateTally) *models.ResultSet {
	items := make([]models.CandidateTally, len(tallies))
	copy(items, tallies)
	Sort(items)

	total := 0
	for _, t := range items {
		total += t.Votes
	}

	rs := &models.ResultSet{
		ElectionID:      e.ID,
		ElectionName:    e.Name,
		IsClosed:        true,
		TotalVotes:      total,
		TotalCandidates: len(items),
		Items:           items,
	}
	if e.StartDate != nil {
		rs.StartDateUTC = e.StartDate.UTC()
	}
	if e.EndDate != nil {
		rs.EndDateUTC = e.EndDate.UTC()
	}
	return rs
}

// Sort orders tallies by votes descending, then name, then candidate id,
// so equal inputs always produce the same order.
func Sort(items []models.CandidateTally) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Votes != items[j].Votes {
			return items[i].Votes > items[j].Votes
		}
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].CandidateID < items[j].CandidateID
	})
}
