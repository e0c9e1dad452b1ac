package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/store"
)

// SessionView summarizes a session after a command changed it.
type SessionView struct {
	ID          string     `json:"id"`
	Preset      string     `json:"preset"`
	Phase       ir.Phase   `json:"phase"`
	Status      ir.Status  `json:"status"`
	EventCount  int        `json:"eventCount"`
	RemainingMs *int64     `json:"remainingMs,omitempty"`
	Appended    []ir.Event `json:"appended"`
}

func viewOf(sess *engine.Session, appended []ir.Event) SessionView {
	st := sess.State()
	if appended == nil {
		appended = []ir.Event{}
	}
	view := SessionView{
		ID:         st.ID,
		Preset:     string(st.Preset),
		Phase:      st.Phase,
		Status:     st.Status,
		EventCount: st.EventCount,
		Appended:   appended,
	}
	if ms, ok := sess.Remaining(); ok {
		view.RemainingMs = &ms
	}
	return view
}

func (v SessionView) writeText(w io.Writer) {
	for _, ev := range v.Appended {
		fmt.Fprintf(w, "+ [%d] %s\n", ev.Seq, ev.Type)
	}
	fmt.Fprintf(w, "Session %s: phase=%s status=%s events=%d", v.ID, v.Phase, v.Status, v.EventCount)
	if v.RemainingMs != nil {
		fmt.Fprintf(w, " remaining=%s", formatMs(*v.RemainingMs))
	}
	fmt.Fprintln(w)
}

// StartOptions holds flags for the start command.
type StartOptions struct {
	*RootOptions
	Database    string
	Preset      string
	SessionID   string
	ProblemID   string
	Title       string
	Description string
}

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a practice session",
		Long: `Create a session, record session.started and persist it.

The session id is printed; pass it to dispatch, tick and trace.

Examples:
  studio start --problem-id two-sum --title "Two Sum"
  studio start --problem-id lru-cache --preset high_pressure --db ./studio.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "timing preset (defaults to config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id (defaults to a new UUIDv7)")
	cmd.Flags().StringVar(&opts.ProblemID, "problem-id", "", "problem identifier (required)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "problem title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "problem description")
	_ = cmd.MarkFlagRequired("problem-id")

	return cmd
}

func runStart(opts *StartOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	settings := opts.settings()
	logger := opts.logger()

	catalog, err := settings.Catalog()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load presets", err)
	}
	name := opts.Preset
	if name == "" {
		name = settings.DefaultPreset
	}

	sess, err := engine.New(engine.Options{
		Preset: preset.Name(name),
		Problem: ir.Problem{
			ID:          strings.TrimSpace(opts.ProblemID),
			Title:       opts.Title,
			Description: opts.Description,
		},
		ID:      opts.SessionID,
		Clock:   opts.clock(),
		IDs:     opts.IDs,
		Catalog: catalog,
		Logger:  logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create session", err)
	}

	st, err := openStore(opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if _, err := st.ReadSession(ctx, sess.ID()); err == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("session %s already exists", sess.ID()))
	}

	return recordAndRun(ctx, f, st, sess, opts.clock()(), func() ([]ir.Event, error) {
		ev, err := sess.Dispatch(ir.EventSessionStarted, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("session started", "session", sess.ID(), "preset", name)
		return []ir.Event{ev}, nil
	})
}

// DispatchOptions holds flags for the dispatch command.
type DispatchOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Payload   string
}

// NewDispatchCommand creates the dispatch command.
func NewDispatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DispatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dispatch <event-type>",
		Short: "Dispatch an event to a stored session",
		Long: `Load a stored session, run its timer, then dispatch one event.

Expiry events that are due (prep.time_expired, coding.silent_started,
silent.ended) are recorded before the dispatch, so the event is checked
against the phase the clock has reached.

Exit codes:
  0 - Event accepted
  1 - Event rejected (the error code is printed)
  2 - Command error (unknown session, invalid --payload)

Examples:
  studio dispatch coding.started --session 0192...
  studio dispatch coding.code_changed --session 0192... --payload '{"code":"return nil"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(opts, ir.EventType(args[0]), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id (required)")
	cmd.Flags().StringVar(&opts.Payload, "payload", "{}", "event payload as a JSON object")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runDispatch(opts *DispatchOptions, t ir.EventType, cmd *cobra.Command) error {
	var payload ir.IRObject
	if err := json.Unmarshal([]byte(opts.Payload), &payload); err != nil {
		return WrapExitError(ExitCommandError, "invalid --payload JSON", err)
	}

	f := newFormatter(opts.RootOptions, cmd)
	st, sess, err := loadStoredSession(cmd.Context(), opts.RootOptions, opts.Database, opts.SessionID)
	if err != nil {
		return err
	}
	defer st.Close()

	return recordAndRun(cmd.Context(), f, st, sess, 0, func() ([]ir.Event, error) {
		expired, err := sess.Tick()
		if err != nil && !engine.IsCode(err, engine.CodeSessionTerminated) {
			return nil, err
		}
		ev, err := sess.Dispatch(t, payload)
		if err != nil {
			return expired, err
		}
		appended := append(expired, ev)
		if t == ir.EventReflectionSubmitted {
			// session.completed is appended with the reflection.
			all := sess.Events()
			appended = append(appended, all[len(all)-1])
		}
		return appended, nil
	})
}

// TickOptions holds flags for the tick command.
type TickOptions struct {
	*RootOptions
	Database  string
	SessionID string
}

// NewTickCommand creates the tick command.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TickOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run a stored session's timer",
		Long: `Load a stored session and record the expiry event of its current phase
if its time is up. Prints the remaining time otherwise.

Examples:
  studio tick --session 0192...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTick(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runTick(opts *TickOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	st, sess, err := loadStoredSession(cmd.Context(), opts.RootOptions, opts.Database, opts.SessionID)
	if err != nil {
		return err
	}
	defer st.Close()

	return recordAndRun(cmd.Context(), f, st, sess, 0, sess.Tick)
}

// loadStoredSession opens the database and restores a session on the
// command's clock.
func loadStoredSession(ctx context.Context, opts *RootOptions, db, id string) (*store.Store, *engine.Session, error) {
	st, err := openExistingStore(opts.database(db))
	if err != nil {
		return nil, nil, err
	}
	sess, err := st.LoadSession(ctx, id, engine.Options{Clock: opts.clock(), Logger: opts.logger()})
	if err != nil {
		st.Close()
		return nil, nil, notFound(err, "session")
	}
	return st, sess, nil
}

// recordAndRun persists everything action appends and reports the outcome.
// Engine rejections exit with ExitFailure and their error code.
func recordAndRun(ctx context.Context, f *OutputFormatter, st *store.Store, sess *engine.Session, createdAt int64, action func() ([]ir.Event, error)) error {
	rec, err := store.Record(ctx, st, sess, createdAt)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record session", err)
	}

	appended, actionErr := action()
	if err := rec.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to persist events", err)
	}

	view := viewOf(sess, appended)
	if actionErr != nil {
		var derr *engine.DispatchError
		if !errors.As(actionErr, &derr) {
			return WrapExitError(ExitCommandError, "command failed", actionErr)
		}
		return f.Failure(string(derr.Code), derr.Error(), view, view.writeText)
	}
	return f.Success(view, view.writeText)
}
