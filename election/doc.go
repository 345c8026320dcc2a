// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election derives the lifecycle state of an election.

# Lifecycle

An election is Scheduled before its start instant, Active from start to end
(inclusive), and Closed afterwards:

	state := election.Resolve(clock.Now(), e.StartDate, e.EndDate)

Elections without a start or end are Scheduled. The state is recomputed on
every read and never stored, so it cannot drift when a boundary passes.

# Clocks

Components take a Clock rather than calling time.Now directly:

	clock := election.SystemClock{}

Tests use a ManualClock and move it across boundaries without sleeping:

	clock := election.NewManualClock(start.Add(-time.Hour))
	clock.Advance(2 * time.Hour)
*/
package election
