package domain

// RunState is the lifecycle state of a single process execution.
type RunState string

const (
	RunStateNotStarted RunState = "not_started" // Command accepted, process not spawned
	RunStateRunning    RunState = "running"     // Process spawned, streams being drained
	RunStateCompleted  RunState = "completed"   // Process exited, response built
	RunStateTimedOut   RunState = "timed_out"   // Draining or exit exceeded the timeout
	RunStateFailed     RunState = "failed"      // Spawn, read or wait error
)

// AllRunStates returns all valid run states.
func AllRunStates() []RunState {
	return []RunState{
		RunStateNotStarted,
		RunStateRunning,
		RunStateCompleted,
		RunStateTimedOut,
		RunStateFailed,
	}
}

// runTransitions defines the allowed run state transitions.
// Flow: not_started → running → completed | timed_out | failed
var runTransitions = map[RunState][]RunState{
	RunStateNotStarted: {RunStateRunning, RunStateFailed},
	RunStateRunning:    {RunStateCompleted, RunStateTimedOut, RunStateFailed},
	RunStateCompleted:  {},
	RunStateTimedOut:   {},
	RunStateFailed:     {},
}

// CanTransitionTo returns true if the state can transition to the target state.
func (s RunState) CanTransitionTo(target RunState) bool {
	allowed, ok := runTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transition is possible.
func (s RunState) IsTerminal() bool {
	return s == RunStateCompleted || s == RunStateTimedOut || s == RunStateFailed
}

// HasResponse returns true if a run in this state yields a CommandResponse.
func (s RunState) HasResponse() bool {
	return s == RunStateCompleted
}

// Display returns a human-readable representation of the state.
func (s RunState) Display() string {
	switch s {
	case RunStateNotStarted:
		return "Not Started"
	case RunStateRunning:
		return "Running"
	case RunStateCompleted:
		return "Completed"
	case RunStateTimedOut:
		return "Timed Out"
	case RunStateFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// IsValid returns true if the state is a known value.
func (s RunState) IsValid() bool {
	switch s {
	case RunStateNotStarted, RunStateRunning, RunStateCompleted, RunStateTimedOut, RunStateFailed:
		return true
	default:
		return false
	}
}
