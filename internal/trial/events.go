package trial

import "tribunal/internal/types"

// EventKind classifies a transcript event.
type EventKind string

const (
	// EventTurn is one agent's completed speaking turn.
	EventTurn EventKind = "turn"
	// EventStatus is a user-visible status message (precondition
	// failures, progress notes). Never a ledger mutation.
	EventStatus EventKind = "status"
	// EventVerdict announces the extracted and recorded verdict.
	EventVerdict EventKind = "verdict"
	// EventAborted is the single terminal entry of a cancelled run.
	EventAborted EventKind = "aborted"
	// EventError reports a fatal failure; the transcript emitted so
	// far is retained.
	EventError EventKind = "error"
)

// Event is one entry of a trial transcript stream.
type Event struct {
	Kind  EventKind
	Turn  int // turn index for EventTurn, -1 otherwise
	Role  types.AgentRole
	Phase Phase
	Text  string
}

// EventFunc receives transcript events as a run produces them.
type EventFunc func(Event)
