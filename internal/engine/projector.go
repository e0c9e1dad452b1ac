package engine

import (
	"strings"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// Meta is the immutable identity and configuration of a session.
type Meta struct {
	ID      string          `json:"id"`
	Preset  preset.Name     `json:"preset"`
	Config  ir.PresetConfig `json:"config"`
	Problem ir.Problem      `json:"problem"`
}

// State is the projection of a session's event log at a point in time.
// Optional figures are nil until the corresponding phase has been reached.
type State struct {
	ID      string          `json:"id"`
	Preset  preset.Name     `json:"preset"`
	Config  ir.PresetConfig `json:"config"`
	Problem ir.Problem      `json:"problem"`

	Phase  ir.Phase  `json:"phase"`
	Status ir.Status `json:"status"`

	Invariants    string `json:"invariants"`
	Code          string `json:"code"`
	AbandonReason string `json:"abandonReason,omitempty"`

	Timestamps  PhaseTimestamps         `json:"timestamps"`
	Timing      Timing                  `json:"timing"`
	Flags       Flags                   `json:"flags"`
	Nudges      NudgeState              `json:"nudges"`
	Overruns    []Overrun               `json:"overruns"`
	CodeMetrics CodeMetrics             `json:"codeMetrics"`
	Reflection  *ir.ReflectionResponses `json:"reflection,omitempty"`

	EventCount     int    `json:"eventCount"`
	PhaseRemaining *int64 `json:"phaseRemaining,omitempty"`
	PhaseExpired   bool   `json:"phaseExpired"`
}

// PhaseTimestamps records when each phase was entered.
type PhaseTimestamps struct {
	SessionStartedAt    *int64 `json:"sessionStartedAt,omitempty"`
	PrepStartedAt       *int64 `json:"prepStartedAt,omitempty"`
	CodingStartedAt     *int64 `json:"codingStartedAt,omitempty"`
	SilentStartedAt     *int64 `json:"silentStartedAt,omitempty"`
	SummaryStartedAt    *int64 `json:"summaryStartedAt,omitempty"`
	ReflectionStartedAt *int64 `json:"reflectionStartedAt,omitempty"`
	CompletedAt         *int64 `json:"completedAt,omitempty"`
	AbandonedAt         *int64 `json:"abandonedAt,omitempty"`
}

// Timing holds time spent per timed phase, in milliseconds.
type Timing struct {
	PrepTimeUsed   *int64 `json:"prepTimeUsed,omitempty"`
	CodingTimeUsed *int64 `json:"codingTimeUsed,omitempty"`
	SilentTimeUsed *int64 `json:"silentTimeUsed,omitempty"`
	TotalDuration  int64  `json:"totalDuration"`
}

// Flags are the behavioral signals reported after a session.
type Flags struct {
	InvariantsEmpty     bool `json:"invariantsEmpty"`
	PrepTimeExpired     bool `json:"prepTimeExpired"`
	AllNudgesUsed       bool `json:"allNudgesUsed"`
	CodeChangedInSilent bool `json:"codeChangedInSilent"`
}

// NudgeState tracks the nudge budget.
type NudgeState struct {
	Budget    int              `json:"budget"`
	Used      int              `json:"used"`
	Remaining int              `json:"remaining"`
	Timings   []ir.NudgeTiming `json:"timings"`
}

// Overrun records a timed phase that ran past its configured duration.
type Overrun struct {
	Phase  ir.Phase `json:"phase"`
	OverBy int64    `json:"overBy"`
}

// CodeMetrics counts code edits.
type CodeMetrics struct {
	Changes         int `json:"changes"`
	ChangesInSilent int `json:"changesInSilent"`
}

// span is an entered phase with an optional exit time.
type span struct {
	start *int64
	end   *int64
}

// Project folds events into a State. It is pure: the same meta, events and
// now always produce deeply equal states. now is only consulted for phases
// still open on an in-progress session and is never allowed to precede the
// last event.
func Project(meta Meta, events []ir.Event, now int64) State {
	st := State{
		ID:       meta.ID,
		Preset:   meta.Preset,
		Config:   meta.Config,
		Problem:  meta.Problem,
		Phase:    ir.PhaseStart,
		Status:   ir.StatusInProgress,
		Overruns: []Overrun{},
		Nudges: NudgeState{
			Budget:  meta.Config.NudgeBudget,
			Timings: []ir.NudgeTiming{},
		},
		EventCount: len(events),
	}

	var prep, coding, silent span
	var last int64

	for _, ev := range events {
		ts := ev.Timestamp
		last = ts

		switch ev.Type {
		case ir.EventSessionStarted:
			st.Timestamps.SessionStartedAt = ptr(ts)
			st.Timestamps.PrepStartedAt = ptr(ts)
			prep.start = ptr(ts)
		case ir.EventPrepInvariantsChanged:
			st.Invariants, _ = ev.Data.Str("invariants")
		case ir.EventPrepTimeExpired:
			st.Flags.PrepTimeExpired = true
		case ir.EventCodingStarted:
			st.Timestamps.CodingStartedAt = ptr(ts)
			prep.end = ptr(ts)
			coding.start = ptr(ts)
			st.Flags.InvariantsEmpty = strings.TrimSpace(st.Invariants) == ""
		case ir.EventCodeChanged:
			st.Code, _ = ev.Data.Str("code")
			st.CodeMetrics.Changes++
			if st.Phase == ir.PhaseSilent {
				st.CodeMetrics.ChangesInSilent++
				st.Flags.CodeChangedInSilent = true
			}
		case ir.EventNudgeRequested:
			st.Nudges.Used++
			timing, ok := ev.Data.Str("timing")
			if !ok {
				var started int64
				if coding.start != nil {
					started = *coding.start
				}
				timing = string(ClassifyNudge(ts, started, meta.Config.CodingDuration))
			}
			st.Nudges.Timings = append(st.Nudges.Timings, ir.NudgeTiming(timing))
		case ir.EventSilentStarted:
			st.Timestamps.SilentStartedAt = ptr(ts)
			coding.end = ptr(ts)
			silent.start = ptr(ts)
		case ir.EventSolutionSubmitted:
			st.Timestamps.SummaryStartedAt = ptr(ts)
			coding.end = ptr(ts)
		case ir.EventSilentEnded:
			st.Timestamps.SummaryStartedAt = ptr(ts)
			silent.end = ptr(ts)
		case ir.EventSummaryContinued:
			st.Timestamps.ReflectionStartedAt = ptr(ts)
		case ir.EventReflectionSubmitted:
			r := ir.ReflectionFromData(ev.Data)
			st.Reflection = &r
		case ir.EventSessionCompleted:
			st.Status = ir.StatusCompleted
			st.Timestamps.CompletedAt = ptr(ts)
		case ir.EventSessionAbandoned:
			st.Status = ir.StatusAbandoned
			st.Timestamps.AbandonedAt = ptr(ts)
			st.AbandonReason, _ = ev.Data.Str("reason")
		}

		st.Phase = nextPhase(st.Phase, ev.Type)
	}

	openEnd := max(now, last)
	if st.Status.Terminal() {
		openEnd = last
	}

	st.Timing.PrepTimeUsed = prep.used(openEnd)
	st.Timing.CodingTimeUsed = coding.used(openEnd)
	st.Timing.SilentTimeUsed = silent.used(openEnd)
	if st.Timestamps.SessionStartedAt != nil {
		st.Timing.TotalDuration = last - *st.Timestamps.SessionStartedAt
	}

	st.Nudges.Remaining = max(st.Nudges.Budget-st.Nudges.Used, 0)
	st.Flags.AllNudgesUsed = st.Nudges.Budget > 0 && st.Nudges.Used >= st.Nudges.Budget

	for _, p := range []struct {
		phase ir.Phase
		span  span
	}{
		{ir.PhasePrep, prep},
		{ir.PhaseCoding, coding},
		{ir.PhaseSilent, silent},
	} {
		if p.span.start == nil || p.span.end == nil {
			continue
		}
		limit, _ := meta.Config.Duration(p.phase)
		if over := *p.span.end - *p.span.start - limit; over > 0 {
			st.Overruns = append(st.Overruns, Overrun{Phase: p.phase, OverBy: over})
		}
	}

	if st.Status == ir.StatusInProgress && st.Phase.Timed() {
		var current span
		switch st.Phase {
		case ir.PhasePrep:
			current = prep
		case ir.PhaseCoding:
			current = coding
		case ir.PhaseSilent:
			current = silent
		}
		limit, _ := meta.Config.Duration(st.Phase)
		elapsed := openEnd - *current.start
		st.PhaseRemaining = ptr(max(limit-elapsed, 0))
		st.PhaseExpired = elapsed >= limit
	}

	return st
}

func (s span) used(openEnd int64) *int64 {
	if s.start == nil {
		return nil
	}
	if s.end != nil {
		return ptr(*s.end - *s.start)
	}
	return ptr(openEnd - *s.start)
}

func ptr(v int64) *int64 {
	return &v
}
