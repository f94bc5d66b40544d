// Package domain provides core business rules for the leads bounded context.
package domain

// Status is the lifecycle state of a lead's call campaign.
type Status string

const (
	// StatusPending is the initial state of an imported lead.
	StatusPending Status = "pending"
	// StatusInProgress means the gateway accepted a call for the lead and
	// the outcome has not arrived yet.
	StatusInProgress Status = "in-progress"
	// StatusConfirmed means the lead confirmed a showing. Terminal.
	StatusConfirmed Status = "confirmed"
	// StatusFailed means the last call did not end in a confirmation.
	// Failed leads stay eligible for re-dispatch.
	StatusFailed Status = "failed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusConfirmed, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
// Confirmed is the only terminal state: failed leads may be called again.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed
}

// allowedTransitions is the explicit transition table. A lead re-entering
// in-progress from failed models a re-dispatch after a failed call.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusConfirmed, StatusFailed},
	StatusFailed:     {StatusInProgress},
	StatusConfirmed:  {},
}

// CanTransition reports whether moving a lead from one status to another is
// legal. Self-transitions are allowed so that redelivered webhook events
// remain idempotent.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Dispatchable reports whether a lead in this status may receive a new call.
func (s Status) Dispatchable() bool {
	return s != StatusConfirmed
}
