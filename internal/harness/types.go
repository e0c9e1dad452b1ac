package harness

import (
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// Rejection records a step whose dispatch or tick failed as expected.
type Rejection struct {
	Step int              `json:"step"`
	Type ir.EventType     `json:"type"`
	Code engine.ErrorCode `json:"code"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the name of the scenario that ran.
	Scenario string `json:"scenario"`

	// SessionID is the id the session ran under.
	SessionID string `json:"sessionId"`

	// Pass indicates overall success: every step behaved as expected and
	// every assertion held.
	Pass bool `json:"pass"`

	// Trace is the session's event log after the last step.
	Trace []ir.Event `json:"trace"`

	// Rejections lists expected failures in step order.
	Rejections []Rejection `json:"rejections"`

	// Errors contains step and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors"`

	// State is the projection after the last step.
	State engine.State `json:"state"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario:   scenario,
		Pass:       true,
		Trace:      []ir.Event{},
		Rejections: []Rejection{},
		Errors:     []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
