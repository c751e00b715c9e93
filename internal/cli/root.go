package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/takeoff/internal/calibration"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Scales  string // CUE scale table; empty uses the built-in table
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the takeoff CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "takeoff",
		Short: "takeoff - drawing measurement capture and calibration",
		Long: `Capture point-to-point measurements on drawing pages and convert them
to real-world distances through a selectable drawing scale.

Measurement sessions are scripted as YAML scenarios, optionally journaled
to SQLite, and replayed to verify that the journal reproduces the same
final state.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Scales, "scales", "", "CUE scale table (default: built-in architectural scales)")

	cmd.AddCommand(NewScalesCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// logger returns a text logger on w. Session logs are debug-level noise
// unless --verbose is set.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// registry loads --scales, or returns nil so callers fall back to their
// own default.
func (o *RootOptions) registry() (*calibration.Registry, error) {
	if o.Scales == "" {
		return nil, nil
	}
	r, err := calibration.LoadFile(o.Scales)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load scale table", err)
	}
	return r, nil
}
