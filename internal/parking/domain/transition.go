package parking

// Transition classifies a status change reported by a sensor.
type Transition string

const (
	TransitionEntry    Transition = "entry"
	TransitionExit     Transition = "exit"
	TransitionNoChange Transition = "no_change"
)

// Classify derives the transition kind from the old and new slot status.
// The unknown status never starts or ends a session.
func Classify(previous, next SlotStatus) Transition {
	switch {
	case previous == StatusFree && next == StatusOccupied:
		return TransitionEntry
	case previous == StatusOccupied && next == StatusFree:
		return TransitionExit
	default:
		return TransitionNoChange
	}
}

// TransitionResult describes the outcome of one processed sensor report.
// Session and Fee are set only when a session was opened or closed.
type TransitionResult struct {
	SlotID         string        `json:"slotId"`
	PreviousStatus SlotStatus    `json:"previousStatus"`
	NewStatus      SlotStatus    `json:"newStatus"`
	Transition     Transition    `json:"transition"`
	Session        *Session      `json:"session,omitempty"`
	Fee            *FeeBreakdown `json:"fee,omitempty"`
}
