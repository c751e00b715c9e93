package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/takeoff/internal/engine"
	"github.com/roach88/takeoff/internal/harness"
	"github.com/roach88/takeoff/internal/journal"
	"github.com/roach88/takeoff/internal/measure"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal   string
	SessionID string
	Document  string

	// SessionIDs overrides the generator for journal session ids (for
	// testing). If nil, defaults to UUIDv7Generator.
	SessionIDs engine.IDGenerator
}

// RunResult is the outcome of one scenario run.
type RunResult struct {
	Scenario     string        `json:"scenario"`
	Pass         bool          `json:"pass"`
	Errors       []string      `json:"errors,omitempty"`
	Digest       string        `json:"digest"`
	Session      string        `json:"session,omitempty"`
	Measurements []measure.Row `json:"measurements"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a measurement scenario",
		Long: `Run a scripted measurement session and print the resulting measurement
list and state digest.

With --journal, every applied input is recorded to a SQLite journal under
a new session so that "takeoff replay" can verify it later.

Exit codes:
  0 - Scenario passed
  1 - A step or assertion failed
  2 - Command error (unreadable scenario, journal not writable, etc.)

Examples:
  takeoff run ./scenarios/basic.yaml
  takeoff run ./scenarios/basic.yaml --journal ./takeoff.db --document plan-a.pdf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the session to this SQLite journal")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "journal session id (default: generated)")
	cmd.Flags().StringVar(&opts.Document, "document", "", "document name stored with the journal session")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.logger(cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	runOpts := []harness.RunOption{harness.WithRegistry(reg), harness.WithLogger(logger)}

	var (
		j         *journal.Journal
		sessionID string
	)
	if opts.Journal != "" {
		j, err = journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()

		sessionID = opts.SessionID
		if sessionID == "" {
			gen := opts.SessionIDs
			if gen == nil {
				gen = engine.UUIDv7Generator{}
			}
			sessionID = gen.Generate()
		}
		if err := j.BeginSession(ctx, sessionID, opts.Document); err != nil {
			return WrapExitError(ExitCommandError, "failed to begin journal session", err)
		}
		runOpts = append(runOpts, harness.WithRecorder(j.Recorder(sessionID)))
		logger.Info("journal session started", "journal", opts.Journal, "session", sessionID)
	}

	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if j != nil {
		if err := j.FinishSession(ctx, sessionID, result.Digest); err != nil {
			return WrapExitError(ExitCommandError, "failed to finish journal session", err)
		}
	}

	out := RunResult{
		Scenario:     scenario.Name,
		Pass:         result.Pass,
		Errors:       result.Errors,
		Digest:       result.Digest,
		Session:      sessionID,
		Measurements: result.Final.Rows,
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	text := func(w io.Writer) { writeRunText(w, out) }
	if !out.Pass {
		return formatter.Failure(CodeScenarioFailed, "scenario failed", out, text)
	}
	return formatter.Success(out, text)
}

func writeRunText(w io.Writer, r RunResult) {
	fmt.Fprintf(w, "%s %s\n", mark(r.Pass), r.Scenario)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	for _, row := range r.Measurements {
		fmt.Fprintf(w, "  %d. %s (page %d): %s\n", row.Index, row.ID, row.Page, row.Text)
	}
	fmt.Fprintf(w, "  digest: %s\n", r.Digest)
	if r.Session != "" {
		fmt.Fprintf(w, "  session: %s\n", r.Session)
	}
}
