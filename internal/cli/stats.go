package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Database string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored sessions",
		Long: `Count stored sessions by status and preset, and report the average
number of nudges used in completed sessions.

Examples:
  studio stats --db ./studio.db
  studio stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compute stats", err)
	}

	return f.Success(stats, func(w io.Writer) {
		fmt.Fprintf(w, "Sessions: %d\n", stats.Sessions)
		fmt.Fprintf(w, "Events:   %d\n", stats.Events)

		writeCounts(w, "By status:", stats.ByStatus)
		writeCounts(w, "By preset:", stats.ByPreset)
		fmt.Fprintf(w, "Completed: %d\n", stats.Completed)
		fmt.Fprintf(w, "Average nudges (completed): %.2f\n", stats.AverageNudges)
	})
}

// writeCounts prints counts sorted by key. Nothing is printed for an empty map.
func writeCounts[K ~string](w io.Writer, heading string, counts map[K]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(w, heading)
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
}
