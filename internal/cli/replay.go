package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
	Status    string
	Preset    string
	Problem   string
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string    `json:"session_id"`
	Preset        string    `json:"preset"`
	Status        ir.Status `json:"status"`
	Phase         ir.Phase  `json:"phase,omitempty"`
	Events        int       `json:"events"`
	StateHash     string    `json:"state_hash,omitempty"`
	LogHash       string    `json:"log_hash,omitempty"`
	Verified      bool      `json:"verified"`
	Deterministic bool      `json:"deterministic"`
	Error         string    `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored sessions and verify determinism",
		Long: `Rebuild every stored session from its event log and verify the result.

For each session the stored event hashes are recomputed, the log is
restored into two fresh sessions, and the two projections must hash equal.
Restoring also re-checks every event against the phase machine, so a log
that could not have been produced by the engine fails here.

Exit codes:
  0 - All sessions verified and deterministic
  1 - Verification failed for at least one session
  2 - Command error (database not found, unknown session)

Examples:
  studio replay --db ./studio.db
  studio replay --db ./studio.db --session 0192...
  studio replay --status completed --preset high_pressure
  studio replay --problem two-sum
  studio replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only sessions with this status")
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "only sessions run under this preset")
	cmd.Flags().StringVar(&opts.Problem, "problem", "", "only sessions for this problem id")
	cmd.MarkFlagsMutuallyExclusive("session", "status")
	cmd.MarkFlagsMutuallyExclusive("session", "preset")
	cmd.MarkFlagsMutuallyExclusive("session", "problem")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	st, err := openExistingStore(opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	var records []store.SessionRecord
	if opts.SessionID != "" {
		rec, err := st.ReadSession(ctx, opts.SessionID)
		if err != nil {
			return notFound(err, "session")
		}
		records = []store.SessionRecord{rec}
	} else {
		records, err = st.ListSessions(ctx, opts.filters()...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(records)),
		TotalSessions:    len(records),
		AllDeterministic: true,
	}
	for _, rec := range records {
		sr := replaySession(ctx, st, rec, logger)
		result.Sessions = append(result.Sessions, sr)
		if !sr.Verified || !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	text := func(w io.Writer) {
		if result.TotalSessions == 0 {
			fmt.Fprintln(w, "No sessions found in database.")
			return
		}
		fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
		fmt.Fprintln(w)
		for _, s := range result.Sessions {
			mark := "✓"
			if !s.Verified || !s.Deterministic {
				mark = "✗"
			}
			fmt.Fprintf(w, "%s Session: %s (%s, %s)\n", mark, s.SessionID, s.Preset, s.Status)
			fmt.Fprintf(w, "  Events: %d, phase %s\n", s.Events, s.Phase)
			if opts.Verbose && s.StateHash != "" {
				fmt.Fprintf(w, "  State hash: %s\n", s.StateHash)
				fmt.Fprintf(w, "  Log hash:   %s\n", s.LogHash)
			}
			if s.Error != "" {
				fmt.Fprintf(w, "  Error: %s\n", s.Error)
			}
			fmt.Fprintln(w)
		}
		if result.AllDeterministic {
			fmt.Fprintln(w, "✓ All sessions verified deterministic")
		}
	}

	if !result.AllDeterministic {
		return f.Failure(ErrCodeDeterminism, "determinism verification failed", result, text)
	}
	return f.Success(result, text)
}

func (o *ReplayOptions) filters() []store.Predicate {
	var filters []store.Predicate
	if o.Status != "" {
		filters = append(filters, store.StatusIs(ir.Status(o.Status)))
	}
	if o.Preset != "" {
		filters = append(filters, store.PresetIs(preset.Name(o.Preset)))
	}
	if o.Problem != "" {
		filters = append(filters, store.ProblemIs(o.Problem))
	}
	return filters
}

// frozenClock never advances. Session clocks are clamped to the last logged
// event, so a restored session is projected at its final timestamp.
func frozenClock() int64 { return 0 }

// replaySession verifies stored hashes, then restores the log twice and
// compares the projections and logs.
func replaySession(ctx context.Context, st *store.Store, rec store.SessionRecord, logger *slog.Logger) ReplaySessionResult {
	sr := ReplaySessionResult{
		SessionID: rec.Meta.ID,
		Preset:    string(rec.Meta.Preset),
		Status:    rec.Status,
		Events:    rec.EventCount,
	}
	fail := func(err error) ReplaySessionResult {
		sr.Error = err.Error()
		logger.Warn("replay failed", "session", rec.Meta.ID, "error", err)
		return sr
	}

	if err := st.VerifyEvents(ctx, rec.Meta.ID); err != nil {
		return fail(err)
	}
	sr.Verified = true

	opts := engine.Options{Clock: frozenClock, Logger: logger}
	first, err := st.LoadSession(ctx, rec.Meta.ID, opts)
	if err != nil {
		return fail(fmt.Errorf("first replay: %w", err))
	}
	second, err := st.LoadSession(ctx, rec.Meta.ID, opts)
	if err != nil {
		return fail(fmt.Errorf("second replay: %w", err))
	}

	stateA, err := ir.StateHash(first.State())
	if err != nil {
		return fail(err)
	}
	stateB, err := ir.StateHash(second.State())
	if err != nil {
		return fail(err)
	}
	logA, err := ir.LogHash(first.Events())
	if err != nil {
		return fail(err)
	}
	logB, err := ir.LogHash(second.Events())
	if err != nil {
		return fail(err)
	}

	sr.Phase = first.State().Phase
	sr.StateHash = stateA
	sr.LogHash = logA
	if stateA != stateB || logA != logB {
		return fail(fmt.Errorf("replays differ: state %s vs %s, log %s vs %s", stateA, stateB, logA, logB))
	}
	if status := first.State().Status; status != rec.Status {
		return fail(fmt.Errorf("stored status %s, replayed status %s", rec.Status, status))
	}
	sr.Deterministic = true
	logger.Debug("session replayed", "session", rec.Meta.ID, "state_hash", stateA)
	return sr
}
