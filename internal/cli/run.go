package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/harness"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string // persist sessions when set
	Filter   string // scenario name filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	SessionID  string   `json:"sessionId,omitempty"`
	Pass       bool     `json:"pass"`
	Events     int      `json:"events"`
	Rejections int      `json:"rejections"`
	Errors     []string `json:"errors,omitempty"`
}

// RunResult holds the overall run result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Play scripted sessions",
		Long: `Play YAML scenarios against fresh sessions on a simulated clock and check
their assertions. Arguments may be scenario files or directories of them.

Scenarios run concurrently. With --db every session and its event log is
persisted, so it can be inspected with trace and verified with replay.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing paths, database errors)

Examples:
  studio run ./scenarios
  studio run ./scenarios/happy_path.yaml --db ./studio.db
  studio run ./scenarios --filter "nudge_*" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "persist sessions to this SQLite database")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name (glob pattern)")

	return cmd
}

// loadedScenario pairs a scenario with its file, or the reason it could not
// be loaded.
type loadedScenario struct {
	file     string
	scenario *harness.Scenario
	err      error
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()
	settings := opts.settings()

	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, "x"); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
	}

	files, err := harness.Discover(paths...)
	if err != nil {
		var nf *harness.ScenarioNotFoundError
		if errors.As(err, &nf) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", nf.Path))
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	catalog, err := settings.Catalog()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load presets", err)
	}

	loaded := loadScenarios(files, opts.Filter, preset.Name(settings.DefaultPreset), catalog)

	result := RunResult{Scenarios: []ScenarioResult{}}
	if len(loaded) == 0 {
		return f.Success(result, func(w io.Writer) {
			fmt.Fprintln(w, "No scenarios found.")
		})
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = openStore(opts.Database)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	var runnable []*harness.Scenario
	for _, l := range loaded {
		if l.err == nil {
			runnable = append(runnable, l.scenario)
		}
	}

	results, err := harness.RunAll(cmd.Context(), runnable, harness.Options{
		Catalog: catalog,
		Store:   st,
		Logger:  logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	next := 0
	for _, l := range loaded {
		var sr ScenarioResult
		if l.err != nil {
			sr = ScenarioResult{
				Name:   strings.TrimSuffix(filepath.Base(l.file), filepath.Ext(l.file)),
				File:   l.file,
				Errors: []string{l.err.Error()},
			}
		} else {
			res := results[next]
			next++
			sr = ScenarioResult{
				Name:       res.Scenario,
				File:       l.file,
				SessionID:  res.SessionID,
				Pass:       res.Pass,
				Events:     len(res.Trace),
				Rejections: len(res.Rejections),
				Errors:     res.Errors,
			}
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}
	result.Total = len(result.Scenarios)

	text := func(w io.Writer) {
		for _, sr := range result.Scenarios {
			if sr.Pass {
				fmt.Fprintf(w, "✓ %s (%d events, %d rejected as expected)\n", sr.Name, sr.Events, sr.Rejections)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", sr.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return f.Failure(ErrCodeScenarioFailed, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total), result, text)
	}
	return f.Success(result, text)
}

// loadScenarios parses files, applies the name filter and default preset, and
// rejects scenarios whose preset the catalog does not define.
func loadScenarios(files []string, filter string, defaultPreset preset.Name, catalog *preset.Catalog) []loadedScenario {
	var out []loadedScenario
	for _, file := range files {
		sc, err := harness.LoadScenario(file)
		if err != nil {
			out = append(out, loadedScenario{file: file, err: fmt.Errorf("failed to load scenario: %w", err)})
			continue
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, sc.Name); !ok {
				continue
			}
		}
		if sc.Preset == "" {
			sc.Preset = string(defaultPreset)
		}
		if !catalog.Has(preset.Name(sc.Preset)) {
			out = append(out, loadedScenario{file: file, err: fmt.Errorf("unknown preset %q", sc.Preset)})
			continue
		}
		out = append(out, loadedScenario{file: file, scenario: sc})
	}
	return out
}
