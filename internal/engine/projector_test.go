package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

func ev(seq int64, typ ir.EventType, ts int64, data ir.IRObject) ir.Event {
	if data == nil {
		data = ir.IRObject{}
	}
	return ir.Event{Seq: seq, Type: typ, Timestamp: ts, Data: data}
}

// overrunLog runs long in PREP and SILENT and short in CODING.
func overrunLog() []ir.Event {
	return []ir.Event{
		ev(1, ir.EventSessionStarted, 0, nil),
		ev(2, ir.EventPrepInvariantsChanged, 10_000, ir.Obj(ir.O("invariants", ir.IRString("  \n")))),
		ev(3, ir.EventPrepTimeExpired, 300_000, nil),
		ev(4, ir.EventCodingStarted, 400_000, nil),
		ev(5, ir.EventCodeChanged, 500_000, ir.Obj(ir.O("code", ir.IRString("v1")))),
		ev(6, ir.EventSilentStarted, 2_000_000, nil),
		ev(7, ir.EventCodeChanged, 2_100_000, ir.Obj(ir.O("code", ir.IRString("v2")))),
		ev(8, ir.EventSilentEnded, 2_400_000, nil),
		ev(9, ir.EventSummaryContinued, 2_500_000, nil),
		ev(10, ir.EventReflectionSubmitted, 2_600_000, reflection("no", "n/a")),
		ev(11, ir.EventSessionCompleted, 2_600_000, nil),
	}
}

func TestProject_Empty(t *testing.T) {
	st := Project(standardMeta(t), nil, 42)

	assert.Equal(t, ir.PhaseStart, st.Phase)
	assert.Equal(t, ir.StatusInProgress, st.Status)
	assert.Equal(t, 0, st.EventCount)
	assert.Nil(t, st.Timing.PrepTimeUsed)
	assert.Nil(t, st.PhaseRemaining)
	assert.NotNil(t, st.Overruns)
	assert.NotNil(t, st.Nudges.Timings)
	assert.Equal(t, 3, st.Nudges.Remaining)
}

func TestProject_CompletedTiming(t *testing.T) {
	st := Project(standardMeta(t), overrunLog(), 9_999_999)

	assert.Equal(t, ir.PhaseDone, st.Phase)
	assert.Equal(t, ir.StatusCompleted, st.Status)

	require.NotNil(t, st.Timing.PrepTimeUsed)
	require.NotNil(t, st.Timing.CodingTimeUsed)
	require.NotNil(t, st.Timing.SilentTimeUsed)
	assert.Equal(t, int64(400_000), *st.Timing.PrepTimeUsed)
	assert.Equal(t, int64(1_600_000), *st.Timing.CodingTimeUsed)
	assert.Equal(t, int64(400_000), *st.Timing.SilentTimeUsed)
	assert.Equal(t, int64(2_600_000), st.Timing.TotalDuration, "now is ignored once terminal")

	assert.Equal(t, []Overrun{
		{Phase: ir.PhasePrep, OverBy: 100_000},
		{Phase: ir.PhaseSilent, OverBy: 100_000},
	}, st.Overruns)

	require.NotNil(t, st.Timestamps.CompletedAt)
	assert.Equal(t, int64(2_600_000), *st.Timestamps.CompletedAt)
	assert.Nil(t, st.PhaseRemaining)
	assert.False(t, st.PhaseExpired)
}

func TestProject_Flags(t *testing.T) {
	st := Project(standardMeta(t), overrunLog(), 0)

	assert.True(t, st.Flags.InvariantsEmpty, "whitespace-only invariants at PREP exit")
	assert.True(t, st.Flags.PrepTimeExpired)
	assert.True(t, st.Flags.CodeChangedInSilent)
	assert.False(t, st.Flags.AllNudgesUsed)

	assert.Equal(t, CodeMetrics{Changes: 2, ChangesInSilent: 1}, st.CodeMetrics)
	assert.Equal(t, "v2", st.Code)
}

func TestProject_InvariantsEmptyOnlyAtPrepExit(t *testing.T) {
	events := []ir.Event{ev(1, ir.EventSessionStarted, 0, nil)}

	st := Project(standardMeta(t), events, 1_000)
	assert.False(t, st.Flags.InvariantsEmpty, "still in PREP")

	events = append(events,
		ev(2, ir.EventPrepInvariantsChanged, 100, ir.Obj(ir.O("invariants", ir.IRString("sorted input")))),
		ev(3, ir.EventCodingStarted, 200, nil))
	st = Project(standardMeta(t), events, 1_000)
	assert.False(t, st.Flags.InvariantsEmpty)
	assert.Equal(t, "sorted input", st.Invariants)
}

func TestProject_OpenPhaseMeasuredToNow(t *testing.T) {
	events := []ir.Event{
		ev(1, ir.EventSessionStarted, 1_000, nil),
		ev(2, ir.EventCodingStarted, 61_000, nil),
	}

	st := Project(standardMeta(t), events, 161_000)
	require.NotNil(t, st.Timing.CodingTimeUsed)
	assert.Equal(t, int64(100_000), *st.Timing.CodingTimeUsed)
	assert.Equal(t, int64(60_000), *st.Timing.PrepTimeUsed)
	assert.Equal(t, int64(60_000), st.Timing.TotalDuration, "total runs to the last event")

	require.NotNil(t, st.PhaseRemaining)
	assert.Equal(t, codingMs-100_000, *st.PhaseRemaining)
	assert.False(t, st.PhaseExpired)

	// now behind the last event is treated as the last event.
	st = Project(standardMeta(t), events, 0)
	assert.Equal(t, int64(0), *st.Timing.CodingTimeUsed)
}

func TestProject_AbandonedMeasuredToLastEvent(t *testing.T) {
	events := []ir.Event{
		ev(1, ir.EventSessionStarted, 0, nil),
		ev(2, ir.EventCodingStarted, 50_000, nil),
		ev(3, ir.EventSessionAbandoned, 80_000, ir.Obj(ir.O("reason", ir.IRString("tired")))),
	}

	st := Project(standardMeta(t), events, 5_000_000)
	assert.Equal(t, ir.StatusAbandoned, st.Status)
	assert.Equal(t, ir.PhaseCoding, st.Phase)
	assert.Equal(t, int64(30_000), *st.Timing.CodingTimeUsed)
	assert.Equal(t, int64(80_000), st.Timing.TotalDuration)
	assert.Empty(t, st.Overruns, "open phases never count as overruns")
	assert.Nil(t, st.PhaseRemaining)
	assert.Equal(t, "tired", st.AbandonReason)
}

func TestProject_PhaseExpired(t *testing.T) {
	events := []ir.Event{ev(1, ir.EventSessionStarted, 0, nil)}

	st := Project(standardMeta(t), events, prepMs-1)
	assert.False(t, st.PhaseExpired)
	assert.Equal(t, int64(1), *st.PhaseRemaining)

	st = Project(standardMeta(t), events, prepMs)
	assert.True(t, st.PhaseExpired)
	assert.Equal(t, int64(0), *st.PhaseRemaining)

	st = Project(standardMeta(t), events, prepMs*3)
	assert.Equal(t, int64(0), *st.PhaseRemaining, "remaining clamps at zero")
}

func TestProject_NudgeTimings(t *testing.T) {
	events := []ir.Event{
		ev(1, ir.EventSessionStarted, 0, nil),
		ev(2, ir.EventCodingStarted, 0, nil),
		ev(3, ir.EventNudgeRequested, 10, ir.Obj(ir.O("timing", ir.IRString("mid")))),
		// Restored logs may predate stored timings; classify from the timestamp.
		ev(4, ir.EventNudgeRequested, codingMs, nil),
	}

	st := Project(standardMeta(t), events, codingMs)
	assert.Equal(t, []ir.NudgeTiming{ir.NudgeMid, ir.NudgeLate}, st.Nudges.Timings)
	assert.Equal(t, 2, st.Nudges.Used)
	assert.Equal(t, 1, st.Nudges.Remaining)
	assert.False(t, st.Flags.AllNudgesUsed)
}

func TestProject_AllNudgesUsedFalseForZeroBudget(t *testing.T) {
	meta := standardMeta(t)
	meta.Config.NudgeBudget = 0

	st := Project(meta, []ir.Event{ev(1, ir.EventSessionStarted, 0, nil)}, 0)
	assert.False(t, st.Flags.AllNudgesUsed)
	assert.Equal(t, 0, st.Nudges.Remaining)
}

func TestProject_IsPure(t *testing.T) {
	meta := standardMeta(t)
	events := overrunLog()

	a := Project(meta, events, 123)
	b := Project(meta, events, 123)
	assert.Equal(t, a, b)

	ha, err := ir.StateHash(a)
	require.NoError(t, err)
	hb, err := ir.StateHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	// The input log is not modified.
	assert.Equal(t, overrunLog(), events)
}

func TestProject_StateHashOfEveryPrefix(t *testing.T) {
	meta := standardMeta(t)
	events := overrunLog()
	for i := range events {
		_, err := ir.StateHash(Project(meta, events[:i+1], 0))
		require.NoError(t, err, "prefix %d", i+1)
	}
}
