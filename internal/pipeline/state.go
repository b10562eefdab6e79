package pipeline

import "fmt"

// State is the lifecycle position of a pipeline run. A run moves strictly
// forward through the happy path; Failed is terminal and reachable from any
// working state.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateValidating
	StateTransforming
	StateLoading
	StateCompleted
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateExtracting:   "extracting",
	StateValidating:   "validating",
	StateTransforming: "transforming",
	StateLoading:      "loading",
	StateCompleted:    "completed",
	StateFailed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// canTransition reports whether moving from s to next is legal: one step
// forward along the happy path, or to Failed from any non-terminal state.
func (s State) canTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return next == s+1
}
