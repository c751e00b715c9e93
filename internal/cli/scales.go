package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/takeoff/internal/calibration"
)

// ScalesResult lists the selectable scales.
type ScalesResult struct {
	Scales []calibration.Scale `json:"scales"`
}

// NewScalesCommand creates the scales command.
func NewScalesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scales",
		Short: "List the selectable drawing scales",
		Long: `List the drawing scales a session can be calibrated with, ordered by
conversion factor. Use --scales to list a custom CUE table instead of the
built-in one.

Examples:
  takeoff scales
  takeoff scales --scales ./imperial.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScales(rootOpts, cmd)
		},
	}
}

func runScales(opts *RootOptions, cmd *cobra.Command) error {
	reg, err := opts.registry()
	if err != nil {
		return err
	}
	if reg == nil {
		reg = calibration.Default()
	}

	result := ScalesResult{Scales: reg.Scales()}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(result, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLABEL\tFACTOR\tUNIT")
		for _, s := range result.Scales {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Label, strconv.FormatFloat(s.Factor, 'g', -1, 64), s.Unit)
		}
		tw.Flush()
	})
}
