// Package harness plays scripted practice sessions against the engine.
//
// A scenario is a YAML file naming a preset and a problem, followed by steps
// that dispatch events, advance a manual clock or tick the session timer.
// Each scenario runs against a fresh engine.Session whose clock starts at
// start_at and whose id is fixed, so the produced event log is deterministic.
//
// After the steps run, assertions are evaluated against the final projected
// state and the event log. RunWithGolden additionally compares the canonical
// trace against testdata/golden/<name>.golden.
//
// Example scenario:
//
//	name: early_submission
//	description: Submitting from CODING skips the silent phase
//	preset: standard
//	problem:
//	  id: two-sum
//	  title: Two Sum
//	steps:
//	  - dispatch: session.started
//	  - advance: 2m
//	  - dispatch: coding.started
//	  - dispatch: silent.ended
//	    expect_error: INVALID_PHASE
//	  - dispatch: coding.solution_submitted
//	assertions:
//	  - type: phase
//	    phase: summary
//	  - type: trace_absent
//	    event: coding.silent_started
package harness
