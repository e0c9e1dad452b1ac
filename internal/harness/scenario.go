package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
)

// Scenario is a scripted session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Preset selects the timing preset; empty uses the default.
	Preset string `yaml:"preset,omitempty"`

	// Problem is the exercise under attempt. Its id is required.
	Problem ProblemSpec `yaml:"problem"`

	// StartAt is the initial clock reading in milliseconds.
	StartAt int64 `yaml:"start_at,omitempty"`

	// SessionID fixes the session id. Defaults to "scenario-<name>".
	SessionID string `yaml:"session_id,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// ProblemSpec describes the problem of a scenario.
type ProblemSpec struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Step performs exactly one of: dispatch an event, advance the clock, tick.
type Step struct {
	// Dispatch is the event type to dispatch.
	Dispatch string `yaml:"dispatch,omitempty"`

	// Payload is the event payload. Floats and nulls are rejected.
	Payload map[string]any `yaml:"payload,omitempty"`

	// Advance moves the clock by a Go duration ("90s", "5m").
	Advance string `yaml:"advance,omitempty"`

	// Tick runs the session timer.
	Tick bool `yaml:"tick,omitempty"`

	// ExpectError is the error code the dispatch or tick must fail with.
	// Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// advanceMs parses Advance into milliseconds.
func (s Step) advanceMs() (int64, error) {
	d, err := time.ParseDuration(s.Advance)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s.Advance)
	}
	return d.Milliseconds(), nil
}

// Assertion validates the final state or trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Phase is the expected phase (phase, overrun).
	Phase string `yaml:"phase,omitempty"`

	// Status is the expected status (status).
	Status string `yaml:"status,omitempty"`

	// Count is the expected number (nudges_remaining, event_count).
	Count *int `yaml:"count,omitempty"`

	// Events is the expected relative order of event types (trace_order).
	Events []string `yaml:"events,omitempty"`

	// Event is the event type that must not appear (trace_absent).
	Event string `yaml:"event,omitempty"`

	// Flag names a behavioral flag (flag).
	Flag string `yaml:"flag,omitempty"`

	// Value is the expected flag value (flag).
	Value *bool `yaml:"value,omitempty"`

	// OverBy is the expected overrun in milliseconds (overrun). When nil the
	// assertion only requires that the phase overran.
	OverBy *int64 `yaml:"over_by,omitempty"`
}

// Assertion type constants.
const (
	AssertPhase           = "phase"
	AssertStatus          = "status"
	AssertNudgesRemaining = "nudges_remaining"
	AssertEventCount      = "event_count"
	AssertTraceOrder      = "trace_order"
	AssertTraceAbsent     = "trace_absent"
	AssertFlag            = "flag"
	AssertOverrun         = "overrun"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Problem.ID == "" {
		return fmt.Errorf("problem.id is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	actions := 0
	if step.Dispatch != "" {
		actions++
	}
	if step.Advance != "" {
		actions++
		if _, err := step.advanceMs(); err != nil {
			return fmt.Errorf("advance: %w", err)
		}
	}
	if step.Tick {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("exactly one of dispatch, advance or tick is required")
	}
	if step.Payload != nil && step.Dispatch == "" {
		return fmt.Errorf("payload requires dispatch")
	}
	if step.ExpectError != "" && step.Advance != "" {
		return fmt.Errorf("expect_error is not valid on advance")
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertPhase:
		if a.Phase == "" {
			return fmt.Errorf("phase assertion requires 'phase' field")
		}
	case AssertStatus:
		if a.Status == "" {
			return fmt.Errorf("status assertion requires 'status' field")
		}
	case AssertNudgesRemaining, AssertEventCount:
		if a.Count == nil {
			return fmt.Errorf("%s assertion requires 'count' field", a.Type)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("trace_order assertion requires 'events' field")
		}
	case AssertTraceAbsent:
		if a.Event == "" {
			return fmt.Errorf("trace_absent assertion requires 'event' field")
		}
	case AssertFlag:
		if a.Flag == "" || a.Value == nil {
			return fmt.Errorf("flag assertion requires 'flag' and 'value' fields")
		}
		if _, ok := flagValue(engine.Flags{}, a.Flag); !ok {
			return fmt.Errorf("unknown flag %q", a.Flag)
		}
	case AssertOverrun:
		if a.Phase == "" {
			return fmt.Errorf("overrun assertion requires 'phase' field")
		}
	case "":
		return fmt.Errorf("assertion type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
