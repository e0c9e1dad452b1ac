package harness

import (
	"fmt"
	"strings"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string     // Assertion type for categorization
	Expected string     // Human-readable expected outcome
	Actual   string     // Human-readable actual outcome
	Trace    []ir.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s @%d\n", ev.Seq, ev.Type, ev.Timestamp)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	st := result.State
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}

	switch a.Type {
	case AssertPhase:
		if string(st.Phase) != a.Phase {
			return fail("phase "+a.Phase, "phase "+string(st.Phase))
		}
	case AssertStatus:
		if string(st.Status) != a.Status {
			return fail("status "+a.Status, "status "+string(st.Status))
		}
	case AssertNudgesRemaining:
		if st.Nudges.Remaining != *a.Count {
			return fail(fmt.Sprintf("%d nudges remaining", *a.Count), fmt.Sprintf("%d", st.Nudges.Remaining))
		}
	case AssertEventCount:
		if len(result.Trace) != *a.Count {
			return fail(fmt.Sprintf("%d events", *a.Count), fmt.Sprintf("%d events", len(result.Trace)))
		}
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a, fail)
	case AssertTraceAbsent:
		for _, ev := range result.Trace {
			if string(ev.Type) == a.Event {
				return fail(a.Event+" absent", fmt.Sprintf("found at seq %d", ev.Seq))
			}
		}
	case AssertFlag:
		got, ok := flagValue(st.Flags, a.Flag)
		if !ok {
			return fail("known flag", "unknown flag "+a.Flag)
		}
		if got != *a.Value {
			return fail(fmt.Sprintf("%s=%t", a.Flag, *a.Value), fmt.Sprintf("%s=%t", a.Flag, got))
		}
	case AssertOverrun:
		return assertOverrun(st.Overruns, a, fail)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertTraceOrder checks that the event types appear in the given relative
// order. Intervening events are allowed.
func assertTraceOrder(trace []ir.Event, a Assertion, fail func(string, string) error) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Events) && string(ev.Type) == a.Events[next] {
			next++
		}
	}
	if next < len(a.Events) {
		return fail(
			"order "+strings.Join(a.Events, " -> "),
			fmt.Sprintf("%s not found after %d matched events", a.Events[next], next),
		)
	}
	return nil
}

func assertOverrun(overruns []engine.Overrun, a Assertion, fail func(string, string) error) error {
	for _, o := range overruns {
		if string(o.Phase) != a.Phase {
			continue
		}
		if a.OverBy != nil && o.OverBy != *a.OverBy {
			return fail(fmt.Sprintf("%s over by %dms", a.Phase, *a.OverBy), fmt.Sprintf("over by %dms", o.OverBy))
		}
		return nil
	}
	return fail(a.Phase+" overrun", "no overrun recorded")
}

// flagValue looks up a behavioral flag by its JSON name.
func flagValue(f engine.Flags, name string) (bool, bool) {
	switch name {
	case "invariantsEmpty":
		return f.InvariantsEmpty, true
	case "prepTimeExpired":
		return f.PrepTimeExpired, true
	case "allNudgesUsed":
		return f.AllNudgesUsed, true
	case "codeChangedInSilent":
		return f.CodeChangedInSilent, true
	default:
		return false, false
	}
}
