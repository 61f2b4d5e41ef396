package league

// Status is the lifecycle state of a match.
type Status string

const (
	StatusWaitingOpponent    Status = "WAITING_OPPONENT"
	StatusWaitingSubmissions Status = "WAITING_SUBMISSIONS"
	StatusSimulating         Status = "SIMULATING"
	StatusDone               Status = "DONE"
	StatusCancelled          Status = "CANCELLED"
)

// transitions is the complete table of legal status changes.
//
// SIMULATING -> SIMULATING is the operator re-trigger of a stuck run.
// DONE -> SIMULATING is a re-simulation, which purges prior events.
var transitions = map[Status][]Status{
	StatusWaitingOpponent:    {StatusWaitingSubmissions, StatusCancelled},
	StatusWaitingSubmissions: {StatusSimulating, StatusCancelled},
	StatusSimulating:         {StatusDone, StatusSimulating, StatusCancelled},
	StatusDone:               {StatusSimulating},
	StatusCancelled:          nil,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition is the single gate for status changes. It returns an
// ILLEGAL_TRANSITION error when from -> to is not in the table.
func Transition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return &Error{
			Code:    ErrCodeIllegalTransition,
			Message: "unknown status " + string(from) + " -> " + string(to),
		}
	}
	if !CanTransition(from, to) {
		return &Error{
			Code:    ErrCodeIllegalTransition,
			Message: string(from) + " -> " + string(to) + " is not permitted",
		}
	}
	return nil
}
