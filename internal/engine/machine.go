package engine

import (
	"slices"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// transition declares where an event may be dispatched and where it leads.
type transition struct {
	from     []ir.Phase // phases in which the event is legal
	to       ir.Phase   // resulting phase; empty keeps the current phase
	active   bool       // legal in every phase between PREP and REFLECTION
	internal bool       // appended by the engine only
}

var activePhases = []ir.Phase{
	ir.PhasePrep,
	ir.PhaseCoding,
	ir.PhaseSilent,
	ir.PhaseSummary,
	ir.PhaseReflection,
}

var transitions = map[ir.EventType]transition{
	ir.EventSessionStarted:        {from: []ir.Phase{ir.PhaseStart}, to: ir.PhasePrep},
	ir.EventPrepInvariantsChanged: {from: []ir.Phase{ir.PhasePrep}},
	ir.EventPrepTimeExpired:       {from: []ir.Phase{ir.PhasePrep}},
	ir.EventCodingStarted:         {from: []ir.Phase{ir.PhasePrep}, to: ir.PhaseCoding},
	ir.EventCodeChanged:           {from: []ir.Phase{ir.PhaseCoding, ir.PhaseSilent}},
	ir.EventNudgeRequested:        {from: []ir.Phase{ir.PhaseCoding}},
	ir.EventSilentStarted:         {from: []ir.Phase{ir.PhaseCoding}, to: ir.PhaseSilent},
	ir.EventSolutionSubmitted:     {from: []ir.Phase{ir.PhaseCoding}, to: ir.PhaseSummary},
	ir.EventSilentEnded:           {from: []ir.Phase{ir.PhaseSilent}, to: ir.PhaseSummary},
	ir.EventSummaryContinued:      {from: []ir.Phase{ir.PhaseSummary}, to: ir.PhaseReflection},
	ir.EventReflectionSubmitted:   {from: []ir.Phase{ir.PhaseReflection}},
	ir.EventSessionCompleted:      {from: []ir.Phase{ir.PhaseReflection}, to: ir.PhaseDone, internal: true},
	ir.EventSessionAbandoned:      {active: true},
	ir.EventAudioStarted:          {active: true},
	ir.EventAudioStopped:          {active: true},
	ir.EventAudioPermissionDenied: {active: true},
	ir.EventAudioUnsupported:      {active: true},
}

// Recognized reports whether t is a known event type.
func Recognized(t ir.EventType) bool {
	_, ok := transitions[t]
	return ok
}

// AllowedIn reports whether t may be dispatched while in phase.
func AllowedIn(t ir.EventType, phase ir.Phase) bool {
	tr, ok := transitions[t]
	if !ok {
		return false
	}
	if tr.active {
		return slices.Contains(activePhases, phase)
	}
	return slices.Contains(tr.from, phase)
}

// nextPhase returns the phase after applying t. Unknown events and
// phase-neutral events keep the current phase.
func nextPhase(current ir.Phase, t ir.EventType) ir.Phase {
	tr, ok := transitions[t]
	if !ok || tr.to == "" {
		return current
	}
	return tr.to
}

// guard runs the structural and phase checks shared by Dispatch and Tick.
// external is false for events the engine appends itself.
func guard(st State, t ir.EventType, external bool) *DispatchError {
	if t == "" {
		return newDispatchError(CodeInvalidEvent, t, st.Phase, "event type is required")
	}
	tr, ok := transitions[t]
	if !ok {
		return newDispatchError(CodeInvalidEventType, t, st.Phase, "unrecognized event type %q", t)
	}
	if st.Status.Terminal() || st.Phase == ir.PhaseDone {
		return newDispatchError(CodeSessionTerminated, t, st.Phase, "session is %s", st.Status)
	}
	if st.Phase == ir.PhaseStart && t != ir.EventSessionStarted {
		return newDispatchError(CodeInvalidPhase, t, st.Phase, "session has not started")
	}
	if t == ir.EventSessionStarted && st.Phase != ir.PhaseStart {
		return newDispatchError(CodeInvalidTransition, t, st.Phase, "session already started")
	}
	if tr.internal && external {
		return newDispatchError(CodeInvalidTransition, t, st.Phase, "%s is emitted by the engine only", t)
	}
	if !AllowedIn(t, st.Phase) {
		return newDispatchError(CodeInvalidPhase, t, st.Phase, "%s is not allowed in phase %s", t, st.Phase)
	}
	if t == ir.EventPrepTimeExpired && st.Flags.PrepTimeExpired {
		return newDispatchError(CodeInvalidTransition, t, st.Phase, "prep time already expired")
	}
	return nil
}
