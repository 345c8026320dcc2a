// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	start := time.Date(2025, 11, 4, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 4, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		now   time.Time
		start *time.Time
		end   *time.Time
		want  State
	}{
		{"no start", start, nil, &end, Scheduled},
		{"no end", start, &start, nil, Scheduled},
		{"no bounds", start, nil, nil, Scheduled},
		{"before start", start.Add(-time.Nanosecond), &start, &end, Scheduled},
		{"at start", start, &start, &end, Active},
		{"midway", start.Add(6 * time.Hour), &start, &end, Active},
		{"at end", end, &start, &end, Active},
		{"after end", end.Add(time.Nanosecond), &start, &end, Closed},
		{"long after end", end.AddDate(1, 0, 0), &start, &end, Closed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.now, tt.start, tt.end))
		})
	}
}

func TestResolve_OffsetIndependent(t *testing.T) {
	// Same instants expressed with different fixed offsets
	plus5 := time.FixedZone("+05:00", 5*3600)
	minus8 := time.FixedZone("-08:00", -8*3600)

	start := time.Date(2025, 11, 4, 13, 0, 0, 0, plus5) // 08:00 UTC
	end := time.Date(2025, 11, 4, 12, 0, 0, 0, minus8)  // 20:00 UTC

	assert.Equal(t, Scheduled, Resolve(time.Date(2025, 11, 4, 7, 59, 0, 0, time.UTC), &start, &end))
	assert.Equal(t, Active, Resolve(time.Date(2025, 11, 4, 8, 0, 0, 0, time.UTC), &start, &end))
	assert.Equal(t, Active, Resolve(time.Date(2025, 11, 4, 20, 0, 0, 0, time.UTC), &start, &end))
	assert.Equal(t, Closed, Resolve(time.Date(2025, 11, 4, 20, 0, 1, 0, time.UTC), &start, &end))
}

func TestResolve_Monotonic(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	// Walking forward in time, the state never moves backwards
	prev := Scheduled
	for now := start.Add(-30 * time.Minute); now.Before(end.Add(30 * time.Minute)); now = now.Add(time.Minute) {
		got := Resolve(now, &start, &end)
		require.GreaterOrEqual(t, int(got), int(prev), "state went from %s to %s at %s", prev, got, now)
		prev = got
	}
	assert.Equal(t, Closed, prev)
}

func TestStateJSON(t *testing.T) {
	for _, s := range []State{Scheduled, Active, Closed} {
		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Equal(t, `"`+s.String()+`"`, string(data))

		var back State
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, s, back)
	}

	var s State
	assert.Error(t, json.Unmarshal([]byte(`"Paused"`), &s))
	assert.Equal(t, "State(7)", State(7).String())
}

func TestManualClock(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	clock := NewManualClock(base)

	assert.True(t, clock.Now().Equal(base))
	assert.Equal(t, time.UTC, clock.Now().Location())

	clock.Advance(90 * time.Minute)
	assert.True(t, clock.Now().Equal(base.Add(90*time.Minute)))

	later := base.AddDate(0, 0, 1)
	clock.Set(later)
	assert.True(t, clock.Now().Equal(later))
}
