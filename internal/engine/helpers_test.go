package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/testutil"
)

const (
	testStart = int64(1_700_000_000_000)
	prepMs    = int64(300_000)
	codingMs  = int64(2_100_000)
	silentMs  = int64(300_000)
)

var testProblem = ir.Problem{
	ID:          "two-sum",
	Title:       "Two Sum",
	Description: "Return indices of the two numbers that add up to target.",
}

func newSession(t *testing.T, name preset.Name) (*Session, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(testStart)
	s, err := New(Options{
		Preset:  name,
		Problem: testProblem,
		Clock:   clock.Now,
		IDs:     NewFixedGenerator("session-1"),
	})
	require.NoError(t, err)
	return s, clock
}

func dispatch(t *testing.T, s *Session, typ ir.EventType, payload ir.IRObject) ir.Event {
	t.Helper()
	ev, err := s.Dispatch(typ, payload)
	require.NoError(t, err, "dispatch %s", typ)
	return ev
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	require.Equal(t, code, de.Code, "message: %s", de.Message)
}

func reflection(prolongedStall, recovered string) ir.IRObject {
	return ir.ReflectionResponses{
		ClearApproach:       "yes",
		ProlongedStall:      prolongedStall,
		RecoveredFromStall:  recovered,
		TimePressure:        "manageable",
		WouldChangeApproach: "no",
	}.Data()
}

func toCoding(t *testing.T, s *Session, clock *testutil.ManualClock) {
	t.Helper()
	dispatch(t, s, ir.EventSessionStarted, nil)
	dispatch(t, s, ir.EventPrepInvariantsChanged, ir.Obj(ir.O("invariants", ir.IRString("array is unsorted"))))
	clock.Advance(60_000)
	dispatch(t, s, ir.EventCodingStarted, nil)
}

func toReflection(t *testing.T, s *Session, clock *testutil.ManualClock) {
	t.Helper()
	toCoding(t, s, clock)
	clock.Advance(600_000)
	dispatch(t, s, ir.EventSolutionSubmitted, nil)
	clock.Advance(30_000)
	dispatch(t, s, ir.EventSummaryContinued, nil)
}

func eventTypes(events []ir.Event) []ir.EventType {
	out := make([]ir.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func standardMeta(t *testing.T) Meta {
	t.Helper()
	cfg, err := preset.Builtin().Resolve(preset.Standard)
	require.NoError(t, err)
	return Meta{ID: "session-1", Preset: preset.Standard, Config: cfg, Problem: testProblem}
}
