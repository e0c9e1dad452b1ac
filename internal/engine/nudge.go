package engine

import "github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"

// ClassifyNudge places a nudge in the early, mid or late third of the coding
// phase. Elapsed time is clamped to [0, codingDuration] and compared with
// integer arithmetic so boundaries are exact.
func ClassifyNudge(now, codingStartedAt, codingDuration int64) ir.NudgeTiming {
	if codingDuration <= 0 {
		return ir.NudgeLate
	}
	elapsed := now - codingStartedAt
	elapsed = max(elapsed, 0)
	elapsed = min(elapsed, codingDuration)

	switch {
	case 3*elapsed < codingDuration:
		return ir.NudgeEarly
	case 3*elapsed < 2*codingDuration:
		return ir.NudgeMid
	default:
		return ir.NudgeLate
	}
}

// checkNudgeBudget enforces the preset's nudge budget. A zero budget
// disables nudges outright.
func checkNudgeBudget(st State) *DispatchError {
	t := ir.EventNudgeRequested
	if st.Nudges.Budget == 0 {
		return newDispatchError(CodeNudgesDisabled, t, st.Phase, "nudges are disabled for preset %q", st.Preset)
	}
	if st.Nudges.Used >= st.Nudges.Budget {
		return newDispatchError(CodeNudgeBudgetExhausted, t, st.Phase,
			"all %d nudges used", st.Nudges.Budget)
	}
	return nil
}

// nudgeData builds the stored payload of an accepted nudge.
func nudgeData(st State, now int64) ir.IRObject {
	var started int64
	if st.Timestamps.CodingStartedAt != nil {
		started = *st.Timestamps.CodingStartedAt
	}
	timing := ClassifyNudge(now, started, st.Config.CodingDuration)
	return ir.Obj(ir.O("timing", ir.IRString(timing)))
}
