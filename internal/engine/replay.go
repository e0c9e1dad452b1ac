package engine

import (
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// Restore replaces the log with events after a structural check. Payloads are
// not re-validated and listeners are not notified. On error the session is
// unchanged. A nil or empty slice resets the session to START.
//
// Sequence numbers are reassigned 1..n in the given order.
func (s *Session) Restore(events []ir.Event) error {
	if derr := CheckLog(s.meta, events); derr != nil {
		s.logger.Debug("restore rejected", "code", derr.Code, "reason", derr.Message)
		return derr
	}

	restored := make([]ir.Event, len(events))
	for i, ev := range events {
		restored[i] = ev.Clone()
		restored[i].Seq = int64(i + 1)
		if restored[i].Data == nil {
			restored[i].Data = ir.IRObject{}
		}
	}
	s.events = restored

	s.logger.Info("session restored", "events", len(restored))
	return nil
}

// CheckLog reports the first structural problem in events, or nil.
//
// Each event is checked against the phase machine as it stood after the
// events before it, the way the engine would have appended it. Nudges must
// fit the budget and session.completed must directly follow
// reflection.submitted. Payload contents are not inspected.
func CheckLog(meta Meta, events []ir.Event) *DispatchError {
	var prev int64
	terminated := false

	for i, ev := range events {
		switch {
		case ev.Type == "":
			return newDispatchError(CodeInvalidEvent, ev.Type, "", "event %d: type is required", i+1)
		case !Recognized(ev.Type):
			return newDispatchError(CodeInvalidEventType, ev.Type, "", "event %d: unrecognized type %q", i+1, ev.Type)
		case terminated:
			return newDispatchError(CodeInvalidEvent, ev.Type, "", "event %d: follows a terminal event", i+1)
		case i == 0 && ev.Type != ir.EventSessionStarted:
			return newDispatchError(CodeInvalidEvent, ev.Type, "", "log must begin with %s", ir.EventSessionStarted)
		case i > 0 && ev.Type == ir.EventSessionStarted:
			return newDispatchError(CodeInvalidEvent, ev.Type, "", "event %d: duplicate %s", i+1, ir.EventSessionStarted)
		case i > 0 && ev.Timestamp < prev:
			return newDispatchError(CodeInvalidEvent, ev.Type, "", "event %d: timestamp %d precedes %d", i+1, ev.Timestamp, prev)
		}

		if i == 0 {
			if p, ok := ev.Data.Str("preset"); ok && p != string(meta.Preset) {
				return newDispatchError(CodeInvalidEvent, ev.Type, "",
					"log was recorded with preset %q, session uses %q", p, meta.Preset)
			}
			if id, ok := ev.Data.Str("problemId"); ok && id != meta.Problem.ID {
				return newDispatchError(CodeInvalidEvent, ev.Type, "",
					"log was recorded for problem %q, session uses %q", id, meta.Problem.ID)
			}
		}

		if derr := checkLogOrder(meta, events, i); derr != nil {
			return derr
		}

		prev = ev.Timestamp
		terminated = ev.Type == ir.EventSessionCompleted || ev.Type == ir.EventSessionAbandoned
	}
	return nil
}

// checkLogOrder checks events[i] against the state folded from events[:i].
func checkLogOrder(meta Meta, events []ir.Event, i int) *DispatchError {
	ev := events[i]
	st := Project(meta, events[:i], ev.Timestamp)

	reject := func(cause *DispatchError) *DispatchError {
		return newDispatchError(CodeInvalidEvent, ev.Type, st.Phase, "event %d: %s", i+1, cause.Message)
	}

	if derr := guard(st, ev.Type, false); derr != nil {
		return reject(derr)
	}
	if ev.Type == ir.EventNudgeRequested {
		if derr := checkNudgeBudget(st); derr != nil {
			return reject(derr)
		}
	}

	afterReflection := i > 0 && events[i-1].Type == ir.EventReflectionSubmitted
	switch {
	case ev.Type == ir.EventSessionCompleted && !afterReflection:
		return newDispatchError(CodeInvalidEvent, ev.Type, st.Phase,
			"event %d: %s must follow %s", i+1, ev.Type, ir.EventReflectionSubmitted)
	case afterReflection && ev.Type != ir.EventSessionCompleted:
		return newDispatchError(CodeInvalidEvent, ev.Type, st.Phase,
			"event %d: %s must be followed by %s", i+1, ir.EventReflectionSubmitted, ir.EventSessionCompleted)
	}
	return nil
}
