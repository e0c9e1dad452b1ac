package store

import (
	"path/filepath"
	"testing"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/testutil"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testProblem = ir.Problem{ID: "two-sum", Title: "Two Sum", Description: "Find two numbers."}

func testMeta(id string, name preset.Name) engine.Meta {
	cfg, err := preset.Builtin().Resolve(name)
	if err != nil {
		panic(err)
	}
	return engine.Meta{ID: id, Preset: name, Config: cfg, Problem: testProblem}
}

// createTestSession creates an engine session on a manual clock.
func createTestSession(t *testing.T, id string, name preset.Name) (*engine.Session, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(1_000)
	sess, err := engine.New(engine.Options{
		ID:      id,
		Preset:  name,
		Problem: testProblem,
		Clock:   clock.Now,
	})
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	return sess, clock
}

func mustDispatch(t *testing.T, sess *engine.Session, typ ir.EventType, payload ir.IRObject) {
	t.Helper()
	if _, err := sess.Dispatch(typ, payload); err != nil {
		t.Fatalf("Dispatch(%s) failed: %v", typ, err)
	}
}

// completeSession drives sess from START to DONE.
func completeSession(t *testing.T, sess *engine.Session, clock *testutil.ManualClock, nudges int) {
	t.Helper()
	mustDispatch(t, sess, ir.EventSessionStarted, nil)
	mustDispatch(t, sess, ir.EventPrepInvariantsChanged, ir.Obj(ir.O("invariants", ir.IRString("n >= 2"))))
	clock.Advance(120_000)
	mustDispatch(t, sess, ir.EventCodingStarted, nil)
	for i := 0; i < nudges; i++ {
		clock.Advance(10_000)
		mustDispatch(t, sess, ir.EventNudgeRequested, nil)
	}
	clock.Advance(600_000)
	mustDispatch(t, sess, ir.EventCodeChanged, ir.Obj(ir.O("code", ir.IRString("return nil"))))
	mustDispatch(t, sess, ir.EventSolutionSubmitted, nil)
	mustDispatch(t, sess, ir.EventSummaryContinued, nil)
	mustDispatch(t, sess, ir.EventReflectionSubmitted, ir.ReflectionResponses{
		ClearApproach:       "yes",
		ProlongedStall:      "no",
		RecoveredFromStall:  "n/a",
		TimePressure:        "comfortable",
		WouldChangeApproach: "no",
	}.Data())
}
