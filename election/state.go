// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"encoding/json"
	"fmt"
	"time"
)

// State is the lifecycle state of an election. It is always derived from
// the current instant and the election bounds and is never persisted.
type State int

const (
	Scheduled State = iota
	Active
	Closed
)

var stateNames = map[State]string{
	Scheduled: "Scheduled",
	Active:    "Active",
	Closed:    "Closed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for state, n := range stateNames {
		if n == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown election state %q", name)
}

// Resolve maps an instant and the election bounds to a lifecycle state.
// A missing bound means the election has not been scheduled yet.
// Both bounds are inclusive for Active.
func Resolve(now time.Time, start, end *time.Time) State {
	if start == nil || end == nil {
		return Scheduled
	}
	if now.Before(*start) {
		return Scheduled
	}
	if now.After(*end) {
		return Closed
	}
	return Active
}
