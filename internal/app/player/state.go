// Package player provides the step-wise demo replay state machine.
package player

// State represents the player state.
type State int

const (
	StateIdle    State = iota // No demo in flight (queue empty, listener uninstalled)
	StateRunning              // Demo in flight (queue non-empty, listener installed)
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// StopReason tells the presenter why a demo stopped.
type StopReason int

const (
	ReasonFinished StopReason = iota // Last segment was presented
	ReasonAborted                    // Abort was requested
)

// String returns the string representation of the stop reason.
func (r StopReason) String() string {
	switch r {
	case ReasonFinished:
		return "finished"
	case ReasonAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
