package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/takeoff/internal/engine"
	"github.com/roach88/takeoff/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal   string
	SessionID string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string `json:"session"`
	Document      string `json:"document,omitempty"`
	Events        int    `json:"events"`
	Applied       int    `json:"applied"`
	Rejected      int    `json:"rejected"`
	Measurements  int    `json:"measurements"`
	Finished      bool   `json:"finished"`
	Recorded      string `json:"recorded_digest,omitempty"`
	Replayed      string `json:"replayed_digest"`
	Deterministic bool   `json:"deterministic"`
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
		Short: "Replay journaled sessions and verify their final state",
		Long: `Re-drive every journaled session through a fresh measurement session
and compare the resulting state digest with the one recorded when the
session finished. Unfinished sessions are replayed and reported but have
nothing to compare against.

Exit codes:
  0 - All finished sessions reproduce their recorded digest
  1 - A digest mismatch was detected
  2 - Command error (journal not found, unknown session, etc.)

Examples:
  takeoff replay --journal ./takeoff.db
  takeoff replay --journal ./takeoff.db --session 0190e3c4-...
  takeoff replay --journal ./takeoff.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.logger(cmd.ErrOrStderr())

	reg, err := opts.registry()
	if err != nil {
		return err
	}

	j, err := journal.OpenExisting(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var sessions []journal.SessionInfo
	if opts.SessionID != "" {
		info, err := j.Session(ctx, opts.SessionID)
		if errors.Is(err, journal.ErrSessionNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.SessionID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []journal.SessionInfo{info}
	} else {
		sessions, err = j.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, info := range sessions {
		events, err := j.Events(ctx, info.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read session %s", info.ID), err)
		}
		replayed, err := engine.Replay(reg, events, engine.WithLogger(logger))
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", info.ID), err)
		}

		sr := ReplaySessionResult{
			Session:       info.ID,
			Document:      info.Document,
			Events:        len(events),
			Applied:       replayed.Applied,
			Rejected:      replayed.Rejected,
			Measurements:  replayed.Session.Measurements().Len(),
			Finished:      info.Finished,
			Recorded:      info.FinalDigest,
			Replayed:      replayed.Digest,
			Deterministic: !info.Finished || info.FinalDigest == replayed.Digest,
		}
		if !sr.Deterministic {
			result.AllDeterministic = false
			logger.Warn("replay digest mismatch",
				"session", info.ID,
				"recorded", info.FinalDigest,
				"replayed", replayed.Digest,
			)
		}
		result.Sessions = append(result.Sessions, sr)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	text := func(w io.Writer) { writeReplayText(w, result, opts.Verbose) }
	if !result.AllDeterministic {
		return out.Failure(CodeDeterminism, "determinism verification failed", result, text)
	}
	return out.Success(result, text)
}

func writeReplayText(w io.Writer, r ReplayResult, verbose bool) {
	if r.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", r.TotalSessions)
	fmt.Fprintln(w)
	for _, s := range r.Sessions {
		fmt.Fprintf(w, "%s Session: %s\n", mark(s.Deterministic), s.Session)
		fmt.Fprintf(w, "  Events: %d applied, %d rejected\n", s.Applied, s.Rejected)
		fmt.Fprintf(w, "  Measurements: %d\n", s.Measurements)
		if verbose {
			if s.Document != "" {
				fmt.Fprintf(w, "  Document: %s\n", s.Document)
			}
			fmt.Fprintf(w, "  Recorded digest: %s\n", s.Recorded)
			fmt.Fprintf(w, "  Replayed digest: %s\n", s.Replayed)
		}
		switch {
		case !s.Finished:
			fmt.Fprintln(w, "  Unfinished: no recorded digest to compare")
		case !s.Deterministic:
			fmt.Fprintln(w, "  Warning: replayed state differs from the recorded state!")
		}
		fmt.Fprintln(w)
	}

	if r.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
