package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// PresetsOptions holds flags for the presets command.
type PresetsOptions struct {
	*RootOptions
	File string // compile this CUE file instead of the configured catalog
}

// PresetRow is one preset in the listing.
type PresetRow struct {
	Name     string `json:"name"`
	Default  bool   `json:"default"`
	PrepMs   int64  `json:"prepMs"`
	CodingMs int64  `json:"codingMs"`
	SilentMs int64  `json:"silentMs"`
	Nudges   int    `json:"nudges"`
}

// PresetsResult is the presets command output.
type PresetsResult struct {
	Source  string      `json:"source"`
	Presets []PresetRow `json:"presets"`
}

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PresetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List timing presets",
		Long: `List the timing presets sessions can run under.

Without --file the built-in presets are listed together with any presets
from the config file's presets_file. With --file the given CUE document is
compiled and validated on its own, which is useful while editing it.

Examples:
  studio presets
  studio presets --file ./presets.cue
  studio presets --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPresets(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CUE preset file to compile and list")

	return cmd
}

func runPresets(opts *PresetsOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	settings := opts.settings()

	var (
		catalog *preset.Catalog
		source  = "builtin"
		err     error
	)
	if opts.File != "" {
		source = opts.File
		catalog, err = preset.CompileFile(opts.File)
	} else {
		if settings.PresetsFile != "" {
			source = "builtin+" + settings.PresetsFile
		}
		catalog, err = settings.Catalog()
	}
	if err != nil {
		var ce *preset.CompileError
		if errors.As(err, &ce) {
			return f.Failure(ErrCodePresets, ce.Error(), nil, nil)
		}
		return f.Failure(ErrCodePresets, err.Error(), nil, nil)
	}

	result := PresetsResult{Source: source, Presets: []PresetRow{}}
	for _, e := range catalog.Entries() {
		result.Presets = append(result.Presets, PresetRow{
			Name:     string(e.Name),
			Default:  string(e.Name) == settings.DefaultPreset,
			PrepMs:   e.Config.PrepDuration,
			CodingMs: e.Config.CodingDuration,
			SilentMs: e.Config.SilentDuration,
			Nudges:   e.Config.NudgeBudget,
		})
	}
	opts.logger().Debug("presets listed", "source", source, "count", len(result.Presets))

	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "Presets (%s)\n", source)
		fmt.Fprintf(w, "  %-16s %-8s %-8s %-8s %s\n", "NAME", "PREP", "CODING", "SILENT", "NUDGES")
		for _, p := range result.Presets {
			name := p.Name
			if p.Default {
				name += "*"
			}
			fmt.Fprintf(w, "  %-16s %-8s %-8s %-8s %d\n",
				name, formatMs(p.PrepMs), formatMs(p.CodingMs), formatMs(p.SilentMs), p.Nudges)
		}
	})
}

// formatMs renders milliseconds as a Go duration ("5m0s").
func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
