package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Type      string // optional - event type prefix filter
}

// TraceEvent is one event in the trace timeline.
type TraceEvent struct {
	Seq       int64        `json:"seq"`
	Type      ir.EventType `json:"type"`
	Timestamp int64        `json:"timestamp"`
	OffsetMs  int64        `json:"offset_ms"`
	Data      ir.IRObject  `json:"data"`
}

// TraceResult holds the trace output: the timeline plus the projection of
// the full log.
type TraceResult struct {
	SessionID string       `json:"session_id"`
	Problem   ir.Problem   `json:"problem"`
	Preset    string       `json:"preset"`
	Timeline  []TraceEvent `json:"timeline"`
	State     engine.State `json:"state"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show a session's event log",
		Long: `Show the event log of a stored session with the state it projects to.

Each event is shown with its offset from session start. --type keeps only
events whose type starts with the given prefix; the summary always reflects
the full log.

Examples:
  studio trace --session 0192...
  studio trace --session 0192... --type coding.
  studio trace --session 0192... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id to trace (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Type, "type", "", "filter to event types with this prefix")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.ReadSession(ctx, opts.SessionID)
	if err != nil {
		return notFound(err, "session")
	}
	events, err := st.ReadEvents(ctx, opts.SessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	var last int64
	if len(events) > 0 {
		last = events[len(events)-1].Timestamp
	}
	result := TraceResult{
		SessionID: rec.Meta.ID,
		Problem:   rec.Meta.Problem,
		Preset:    string(rec.Meta.Preset),
		Timeline:  buildTimeline(events, opts.Type),
		State:     engine.Project(rec.Meta, events, last),
	}

	return f.Success(result, func(w io.Writer) {
		writeTraceText(w, result, opts.Verbose)
	})
}

// buildTimeline converts events, keeping those whose type has the prefix.
func buildTimeline(events []ir.Event, prefix string) []TraceEvent {
	timeline := []TraceEvent{}
	if len(events) == 0 {
		return timeline
	}
	start := events[0].Timestamp
	for _, ev := range events {
		if prefix != "" && !strings.HasPrefix(string(ev.Type), prefix) {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:       ev.Seq,
			Type:      ev.Type,
			Timestamp: ev.Timestamp,
			OffsetMs:  ev.Timestamp - start,
			Data:      ev.Data,
		})
	}
	return timeline
}

func writeTraceText(w io.Writer, r TraceResult, verbose bool) {
	title := r.Problem.ID
	if r.Problem.Title != "" {
		title = fmt.Sprintf("%s (%s)", r.Problem.Title, r.Problem.ID)
	}
	fmt.Fprintf(w, "Session: %s\n", r.SessionID)
	fmt.Fprintf(w, "Problem: %s\n", title)
	fmt.Fprintf(w, "Preset:  %s\n", r.Preset)
	fmt.Fprintln(w)

	if len(r.Timeline) == 0 {
		fmt.Fprintln(w, "No events.")
	}
	for _, ev := range r.Timeline {
		fmt.Fprintf(w, "  [%3d] +%-9s %s", ev.Seq, formatMs(ev.OffsetMs), ev.Type)
		if len(ev.Data) > 0 {
			if data, err := ir.MarshalCanonical(ev.Data); err == nil {
				fmt.Fprintf(w, " %s", data)
			}
		}
		fmt.Fprintln(w)
	}

	s := r.State
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Phase: %s  Status: %s  Events: %d\n", s.Phase, s.Status, s.EventCount)
	fmt.Fprintf(w, "Nudges: %d/%d used", s.Nudges.Used, s.Nudges.Budget)
	if len(s.Nudges.Timings) > 0 {
		timings := make([]string, len(s.Nudges.Timings))
		for i, t := range s.Nudges.Timings {
			timings[i] = string(t)
		}
		fmt.Fprintf(w, " (%s)", strings.Join(timings, ", "))
	}
	fmt.Fprintln(w)

	var flags []string
	if s.Flags.InvariantsEmpty {
		flags = append(flags, "invariantsEmpty")
	}
	if s.Flags.PrepTimeExpired {
		flags = append(flags, "prepTimeExpired")
	}
	if s.Flags.AllNudgesUsed {
		flags = append(flags, "allNudgesUsed")
	}
	if s.Flags.CodeChangedInSilent {
		flags = append(flags, "codeChangedInSilent")
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "Flags: %s\n", strings.Join(flags, ", "))
	}
	for _, o := range s.Overruns {
		fmt.Fprintf(w, "Overrun: %s by %s\n", o.Phase, formatMs(o.OverBy))
	}
	if verbose && s.Reflection != nil {
		fmt.Fprintf(w, "Reflection: %+v\n", *s.Reflection)
	}
}
