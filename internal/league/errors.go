package league

import (
	"errors"
	"fmt"
)

// Error is a classified league failure.
//
// Codes map onto how a caller should react:
//   - NOT_FOUND: team or match absent, surface to the caller, never retry
//   - INVALID_REQUEST: rejected before any state mutation
//   - CONFLICT_RACE: lost a matchmaking race, fall through to queueing
//   - ILLEGAL_TRANSITION: status change outside the transition table
//   - SIMULATION_FAULT: engine inconsistency, match stays SIMULATING
type Error struct {
	Code    ErrorCode
	Message string
	MatchID int64
	TeamID  int64
	Err     error
}

// ErrorCode categorizes league errors.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeConflictRace      ErrorCode = "CONFLICT_RACE"
	ErrCodeIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeSimulationFault   ErrorCode = "SIMULATION_FAULT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.MatchID != 0 && e.TeamID != 0:
		msg += fmt.Sprintf(" (match=%d, team=%d)", e.MatchID, e.TeamID)
	case e.MatchID != 0:
		msg += fmt.Sprintf(" (match=%d)", e.MatchID)
	case e.TeamID != 0:
		msg += fmt.Sprintf(" (team=%d)", e.TeamID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsInvalid reports whether err is an INVALID_REQUEST error.
func IsInvalid(err error) bool { return CodeOf(err) == ErrCodeInvalidRequest }

// IsConflict reports whether err is a CONFLICT_RACE error.
func IsConflict(err error) bool { return CodeOf(err) == ErrCodeConflictRace }

// IsIllegalTransition reports whether err is an ILLEGAL_TRANSITION error.
func IsIllegalTransition(err error) bool { return CodeOf(err) == ErrCodeIllegalTransition }

// IsSimulationFault reports whether err is a SIMULATION_FAULT error.
func IsSimulationFault(err error) bool { return CodeOf(err) == ErrCodeSimulationFault }

// TeamNotFound builds a NOT_FOUND error for a team.
func TeamNotFound(teamID int64) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "team not found", TeamID: teamID}
}

// MatchNotFound builds a NOT_FOUND error for a match.
func MatchNotFound(matchID int64) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "match not found", MatchID: matchID}
}

// Invalid builds an INVALID_REQUEST error.
func Invalid(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a CONFLICT_RACE error for a match slot.
func Conflict(matchID int64, msg string) *Error {
	return &Error{Code: ErrCodeConflictRace, Message: msg, MatchID: matchID}
}

// Fault builds a SIMULATION_FAULT error.
func Fault(matchID int64, msg string, cause error) *Error {
	return &Error{Code: ErrCodeSimulationFault, Message: msg, MatchID: matchID, Err: cause}
}
