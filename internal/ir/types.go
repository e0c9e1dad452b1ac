package ir

import "strings"

// Phase is one stage of the guided exercise. Exactly one is active at a time.
type Phase string

const (
	PhaseStart      Phase = "start"
	PhasePrep       Phase = "prep"
	PhaseCoding     Phase = "coding"
	PhaseSilent     Phase = "silent"
	PhaseSummary    Phase = "summary"
	PhaseReflection Phase = "reflection"
	PhaseDone       Phase = "done"
)

var phaseRank = map[Phase]int{
	PhaseStart:      0,
	PhasePrep:       1,
	PhaseCoding:     2,
	PhaseSilent:     3,
	PhaseSummary:    4,
	PhaseReflection: 5,
	PhaseDone:       6,
}

// Rank orders phases along the forward-only graph. Unknown phases rank -1.
func (p Phase) Rank() int {
	r, ok := phaseRank[p]
	if !ok {
		return -1
	}
	return r
}

// Timed reports whether the phase has a configured duration.
func (p Phase) Timed() bool {
	return p == PhasePrep || p == PhaseCoding || p == PhaseSilent
}

// Status is orthogonal to Phase: a session can be abandoned in any phase.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned_explicit"
)

// Terminal reports whether no further events may be accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// EventType names a discrete user or system event.
type EventType string

const (
	EventSessionStarted        EventType = "session.started"
	EventPrepInvariantsChanged EventType = "prep.invariants_changed"
	EventPrepTimeExpired       EventType = "prep.time_expired"
	EventCodingStarted         EventType = "coding.started"
	EventCodeChanged           EventType = "coding.code_changed"
	EventNudgeRequested        EventType = "nudge.requested"
	EventSilentStarted         EventType = "coding.silent_started"
	EventSolutionSubmitted     EventType = "coding.solution_submitted"
	EventSilentEnded           EventType = "silent.ended"
	EventSummaryContinued      EventType = "summary.continued"
	EventReflectionSubmitted   EventType = "reflection.submitted"
	EventSessionCompleted      EventType = "session.completed"
	EventSessionAbandoned      EventType = "session.abandoned"
	EventAudioStarted          EventType = "audio.started"
	EventAudioStopped          EventType = "audio.stopped"
	EventAudioPermissionDenied EventType = "audio.permission_denied"
	EventAudioUnsupported      EventType = "audio.unsupported"
)

// EventTypes lists every recognized event type in lifecycle order.
var EventTypes = []EventType{
	EventSessionStarted,
	EventPrepInvariantsChanged,
	EventPrepTimeExpired,
	EventCodingStarted,
	EventCodeChanged,
	EventNudgeRequested,
	EventSilentStarted,
	EventSolutionSubmitted,
	EventSilentEnded,
	EventSummaryContinued,
	EventReflectionSubmitted,
	EventSessionCompleted,
	EventSessionAbandoned,
	EventAudioStarted,
	EventAudioStopped,
	EventAudioPermissionDenied,
	EventAudioUnsupported,
}

// IsAudio reports whether t belongs to the audit-only audio family.
func (t EventType) IsAudio() bool {
	return strings.HasPrefix(string(t), "audio.")
}

// Event is one accepted entry of a session's log. Immutable once appended.
type Event struct {
	Seq       int64     `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Data      IRObject  `json:"data"`
}

// Clone returns a copy whose Data can be mutated without touching e.
func (e Event) Clone() Event {
	e.Data = e.Data.Clone()
	return e
}

// Problem is the exercise under attempt. Supplied at creation, immutable.
type Problem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PresetConfig is the resolved timing and nudge budget of a session.
// Durations are milliseconds.
type PresetConfig struct {
	PrepDuration   int64 `json:"prepDuration"`
	CodingDuration int64 `json:"codingDuration"`
	SilentDuration int64 `json:"silentDuration"`
	NudgeBudget    int   `json:"nudgeBudget"`
}

// Duration returns the configured duration of a timed phase.
func (c PresetConfig) Duration(p Phase) (int64, bool) {
	switch p {
	case PhasePrep:
		return c.PrepDuration, true
	case PhaseCoding:
		return c.CodingDuration, true
	case PhaseSilent:
		return c.SilentDuration, true
	default:
		return 0, false
	}
}

// NudgeTiming classifies when in the coding phase a nudge was taken.
type NudgeTiming string

const (
	NudgeEarly NudgeTiming = "early"
	NudgeMid   NudgeTiming = "mid"
	NudgeLate  NudgeTiming = "late"
)

// Reflection payload field names.
const (
	FieldClearApproach       = "clearApproach"
	FieldProlongedStall      = "prolongedStall"
	FieldRecoveredFromStall  = "recoveredFromStall"
	FieldTimePressure        = "timePressure"
	FieldWouldChangeApproach = "wouldChangeApproach"
)

// ReflectionFields lists the reflection fields in presentation order.
var ReflectionFields = []string{
	FieldClearApproach,
	FieldProlongedStall,
	FieldRecoveredFromStall,
	FieldTimePressure,
	FieldWouldChangeApproach,
}

// ReflectionChoices holds the enumerated values of each reflection field.
var ReflectionChoices = map[string][]string{
	FieldClearApproach:       {"yes", "partially", "no"},
	FieldProlongedStall:      {"yes", "no"},
	FieldRecoveredFromStall:  {"yes", "partially", "no", "n/a"},
	FieldTimePressure:        {"comfortable", "manageable", "overwhelming"},
	FieldWouldChangeApproach: {"yes", "no"},
}

// ReflectionResponses is the mandatory self-reflection, validated as a unit.
type ReflectionResponses struct {
	ClearApproach       string `json:"clearApproach"`
	ProlongedStall      string `json:"prolongedStall"`
	RecoveredFromStall  string `json:"recoveredFromStall"`
	TimePressure        string `json:"timePressure"`
	WouldChangeApproach string `json:"wouldChangeApproach"`
}

// ReflectionFromData reads the five fields from an event payload.
// Missing fields come back empty.
func ReflectionFromData(data IRObject) ReflectionResponses {
	var r ReflectionResponses
	r.ClearApproach, _ = data.Str(FieldClearApproach)
	r.ProlongedStall, _ = data.Str(FieldProlongedStall)
	r.RecoveredFromStall, _ = data.Str(FieldRecoveredFromStall)
	r.TimePressure, _ = data.Str(FieldTimePressure)
	r.WouldChangeApproach, _ = data.Str(FieldWouldChangeApproach)
	return r
}

// Data renders the responses as a reflection.submitted payload.
func (r ReflectionResponses) Data() IRObject {
	return Obj(
		O(FieldClearApproach, IRString(r.ClearApproach)),
		O(FieldProlongedStall, IRString(r.ProlongedStall)),
		O(FieldRecoveredFromStall, IRString(r.RecoveredFromStall)),
		O(FieldTimePressure, IRString(r.TimePressure)),
		O(FieldWouldChangeApproach, IRString(r.WouldChangeApproach)),
	)
}
