package engine

import (
	"errors"
	"fmt"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// ErrorCode categorizes a rejected dispatch.
type ErrorCode string

const (
	// CodeInvalidTransition: a legal event that cannot happen again or is
	// reserved for the engine (second session.started, external session.completed).
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// CodeInvalidPhase: the event is not allowed in the current phase.
	CodeInvalidPhase ErrorCode = "INVALID_PHASE"

	// CodeSessionTerminated: the session is completed or abandoned.
	CodeSessionTerminated ErrorCode = "SESSION_TERMINATED"

	// CodeInvalidEvent: the event itself is malformed (empty type, broken log).
	CodeInvalidEvent ErrorCode = "INVALID_EVENT"

	// CodeInvalidEventType: the event type is not recognized.
	CodeInvalidEventType ErrorCode = "INVALID_EVENT_TYPE"

	// CodeInvalidPayload: the payload has unknown, missing or mistyped fields.
	CodeInvalidPayload ErrorCode = "INVALID_PAYLOAD"

	// CodeValidationFailed: the payload is well-formed but semantically invalid.
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// CodeNudgeBudgetExhausted: every nudge of the budget has been used.
	CodeNudgeBudgetExhausted ErrorCode = "NUDGE_BUDGET_EXHAUSTED"

	// CodeNudgesDisabled: the session's preset allows no nudges.
	CodeNudgesDisabled ErrorCode = "NUDGES_DISABLED_IN_PHASE"
)

// DispatchError is the failure variant of Dispatch, Tick and Restore.
// A session is unchanged after any DispatchError.
type DispatchError struct {
	Code      ErrorCode
	Message   string
	EventType ir.EventType
	Phase     ir.Phase
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.EventType != "" {
		return fmt.Sprintf("%s: %s (event=%s, phase=%s)", e.Code, e.Message, e.EventType, e.Phase)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newDispatchError(code ErrorCode, t ir.EventType, phase ir.Phase, format string, args ...any) *DispatchError {
	return &DispatchError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		EventType: t,
		Phase:     phase,
	}
}

// CodeOf returns the code of a DispatchError, or "" for any other error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DispatchError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
