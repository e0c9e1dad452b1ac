package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// TraceSnapshot is the golden representation of a scenario run.
type TraceSnapshot struct {
	ScenarioName string
	SessionID    string
	Trace        []ir.Event
	Rejections   []Rejection
	Phase        ir.Phase
	Status       ir.Status
}

// SnapshotOf builds the snapshot of a result.
func SnapshotOf(result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: result.Scenario,
		SessionID:    result.SessionID,
		Trace:        result.Trace,
		Rejections:   result.Rejections,
		Phase:        result.State.Phase,
		Status:       result.State.Status,
	}
}

// toIR converts the snapshot for canonical serialization.
func (s TraceSnapshot) toIR() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, ev := range s.Trace {
		trace[i] = ir.EventObject(ev)
	}

	rejections := make(ir.IRArray, len(s.Rejections))
	for i, r := range s.Rejections {
		rejections[i] = ir.Obj(
			ir.O("step", ir.IRInt(r.Step)),
			ir.O("type", ir.IRString(r.Type)),
			ir.O("code", ir.IRString(r.Code)),
		)
	}

	return ir.Obj(
		ir.O("scenario_name", ir.IRString(s.ScenarioName)),
		ir.O("session_id", ir.IRString(s.SessionID)),
		ir.O("trace", trace),
		ir.O("rejections", rejections),
		ir.O("final", ir.Obj(
			ir.O("phase", ir.IRString(s.Phase)),
			ir.O("status", ir.IRString(s.Status)),
		)),
	)
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toIR())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	traceJSON, err := SnapshotOf(result).MarshalCanonical()
	if err != nil {
		return fmt.Errorf("golden %s: %w", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
