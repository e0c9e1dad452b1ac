package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/store"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/testutil"
)

// Options configures scenario execution. The zero value runs against the
// built-in catalog without persistence and discards logs.
type Options struct {
	Catalog *preset.Catalog
	Store   *store.Store
	Logger  *slog.Logger
}

// harness executes one scenario.
type harness struct {
	scenario *Scenario
	session  *engine.Session
	clock    *testutil.ManualClock
	logger   *slog.Logger
}

// Run executes a scenario with default options.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(context.Background(), scenario, Options{})
}

// RunWithOptions executes a scenario and returns the result.
//
// Execution flow:
// 1. Create a session with a fixed id on a manual clock at start_at
// 2. Attach a store recorder if a store is configured
// 3. Execute steps, checking expected errors
// 4. Evaluate assertions against the final state and trace
//
// Step and assertion failures are reported in the Result. The returned error
// is reserved for setup problems such as an unknown preset.
func RunWithOptions(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sessionID := scenario.SessionID
	if sessionID == "" {
		sessionID = "scenario-" + scenario.Name
	}

	clock := testutil.NewManualClock(scenario.StartAt)
	sess, err := engine.New(engine.Options{
		Preset: preset.Name(scenario.Preset),
		Problem: ir.Problem{
			ID:          scenario.Problem.ID,
			Title:       scenario.Problem.Title,
			Description: scenario.Problem.Description,
		},
		ID:      sessionID,
		Clock:   clock.Now,
		Catalog: opts.Catalog,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	var recorder *store.Recorder
	if opts.Store != nil {
		recorder, err = store.Record(ctx, opts.Store, sess, scenario.StartAt)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	h := &harness{scenario: scenario, session: sess, clock: clock, logger: logger}
	result := NewResult(scenario.Name)
	result.SessionID = sessionID

	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	result.Trace = sess.Events()
	result.State = sess.State()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"events", len(result.Trace),
		"errors", len(result.Errors))

	return result, nil
}

// executeStep runs one step. Unexpected outcomes are recorded on result.
func (h *harness) executeStep(i int, step Step, result *Result) {
	switch {
	case step.Advance != "":
		// Validated at load time.
		ms, _ := step.advanceMs()
		h.clock.Advance(ms)
		h.logger.Debug("clock advanced", "step", i, "ms", ms, "now", h.clock.Now())

	case step.Tick:
		_, err := h.session.Tick()
		h.checkOutcome(i, "", step.ExpectError, err, result)

	default:
		payload, err := ir.ObjectFromGo(step.Payload)
		if err != nil {
			result.AddError(fmt.Sprintf("step %d: payload: %v", i, err))
			return
		}
		t := ir.EventType(step.Dispatch)
		_, err = h.session.Dispatch(t, payload)
		h.checkOutcome(i, t, step.ExpectError, err, result)
	}
}

func (h *harness) checkOutcome(i int, t ir.EventType, expect string, err error, result *Result) {
	label := string(t)
	if label == "" {
		label = "tick"
	}

	if err == nil {
		if expect != "" {
			result.AddError(fmt.Sprintf("step %d: %s succeeded, expected %s", i, label, expect))
		}
		return
	}

	code := engine.CodeOf(err)
	if expect == "" {
		result.AddError(fmt.Sprintf("step %d: %s failed: %v", i, label, err))
		return
	}
	if string(code) != expect {
		result.AddError(fmt.Sprintf("step %d: %s failed with %s, expected %s", i, label, code, expect))
		return
	}
	result.Rejections = append(result.Rejections, Rejection{Step: i, Type: t, Code: code})
}

// RunAll executes scenarios concurrently and returns results in input order.
// Sessions share nothing, so the only limit on parallelism is the CPU count.
func RunAll(ctx context.Context, scenarios []*Scenario, opts Options) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			res, err := RunWithOptions(ctx, sc, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
