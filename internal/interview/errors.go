package interview

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/types"
)

// InvalidConfigurationError indicates a session cannot be created from the
// given configuration.
type InvalidConfigurationError struct {
	Message string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid session configuration: %s", e.Message)
}

// InvalidStateError indicates an operation that is not permitted in the
// session's current lifecycle state.
type InvalidStateError struct {
	SessionID uuid.UUID
	State     types.SessionState
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %s: cannot %s in state %s", e.SessionID, e.Operation, e.State)
}

// OutOfOrderError indicates an answer submitted for a question other than the
// one currently awaiting an answer. The session state is left unchanged.
type OutOfOrderError struct {
	SessionID uuid.UUID
	Expected  uuid.UUID
	Got       uuid.UUID
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("session %s: answer submitted for question %s but question %s is awaiting an answer", e.SessionID, e.Got, e.Expected)
}

// NotCompletedError indicates a finalize attempt on a session that has not
// reached the completed state.
type NotCompletedError struct {
	SessionID uuid.UUID
	State     types.SessionState
}

func (e *NotCompletedError) Error() string {
	return fmt.Sprintf("session %s: cannot finalize in state %s, session must be completed", e.SessionID, e.State)
}

// SessionNotFoundError indicates an unknown session ID.
type SessionNotFoundError struct {
	SessionID uuid.UUID
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}
