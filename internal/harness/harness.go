package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/takeoff/internal/calibration"
	"github.com/roach88/takeoff/internal/drag"
	"github.com/roach88/takeoff/internal/engine"
	"github.com/roach88/takeoff/internal/history"
	"github.com/roach88/takeoff/internal/testutil"
)

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	registry *calibration.Registry
	recorder engine.Recorder
	logger   *slog.Logger
}

// WithRegistry resolves scales against r instead of the scenario's table
// or the built-in one.
func WithRegistry(r *calibration.Registry) RunOption {
	return func(c *runConfig) {
		c.registry = r
	}
}

// WithRecorder journals every successfully applied step.
func WithRecorder(r engine.Recorder) RunOption {
	return func(c *runConfig) {
		c.recorder = r
	}
}

// WithLogger sends session logs to l. Default: discarded.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario against a fresh session and returns the result.
//
// Execution flow:
//  1. Resolve the scale registry and session policies
//  2. Apply each step, checking expect_error
//  3. Evaluate assertions against the final state
//
// A step refused by the session without expect_error is a failure, not an
// error: Run keeps going so the result reports every problem. Run returns
// an error only when the scenario cannot be executed at all.
func Run(ctx context.Context, scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry, err := resolveRegistry(scenario, cfg.registry)
	if err != nil {
		return nil, err
	}

	sessionOpts, err := policyOptions(scenario.Policy)
	if err != nil {
		return nil, err
	}
	sessionOpts = append(sessionOpts,
		engine.WithIDGenerator(newScriptedIDs(scenario.IDs)),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(cfg.logger),
	)
	session := engine.NewSession(registry, sessionOpts...)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := runStep(ctx, session, cfg.recorder, i, step, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(session, scenario.Assertions) {
		result.AddError(msg)
	}

	result.Final = session.State()
	digest, err := result.Final.Digest()
	if err != nil {
		return nil, fmt.Errorf("digest final state: %w", err)
	}
	result.Digest = digest

	cfg.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"steps", len(scenario.Steps),
		"failures", len(result.Errors),
	)
	return result, nil
}

func runStep(ctx context.Context, s *engine.Session, rec engine.Recorder, i int, step Step, result *Result) error {
	ev, err := step.Event()
	if err != nil {
		return fmt.Errorf("steps[%d]: %w", i, err)
	}

	applied, applyErr := s.Apply(ev)
	entry := TraceEntry{Step: i + 1, Action: step.Action, Seq: s.Seq()}
	if ev.Type == engine.EventPointerUp {
		entry.ID = applied.ID
	}

	code := errorCode(applyErr)
	entry.Error = code
	result.Trace = append(result.Trace, entry)

	switch {
	case step.ExpectError != "" && code != step.ExpectError:
		got := code
		if got == "" {
			got = "success"
		}
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s", i, step.Action, step.ExpectError, got))
	case step.ExpectError == "" && applyErr != nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Action, applyErr))
	}

	if applyErr == nil && rec != nil {
		if err := rec.Record(ctx, s.Seq(), applied); err != nil {
			return fmt.Errorf("steps[%d]: record: %w", i, err)
		}
	}
	return nil
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return "ERROR"
}

func resolveRegistry(s *Scenario, override *calibration.Registry) (*calibration.Registry, error) {
	if override != nil {
		return override, nil
	}
	if s.Scales == "" {
		return calibration.Default(), nil
	}
	r, err := calibration.LoadFile(s.Scales)
	if err != nil {
		return nil, fmt.Errorf("load scales for %s: %w", s.Name, err)
	}
	return r, nil
}

func policyOptions(p Policy) ([]engine.Option, error) {
	var opts []engine.Option
	switch p.ZeroLength {
	case "", "reject":
	case "allow":
		opts = append(opts, engine.WithZeroLengthPolicy(drag.AllowZeroLength))
	default:
		return nil, fmt.Errorf("unknown zero_length policy %q", p.ZeroLength)
	}
	switch p.RedoOrder {
	case "", "fifo":
	case "lifo":
		opts = append(opts, engine.WithRedoOrder(history.RedoLIFO))
	default:
		return nil, fmt.Errorf("unknown redo_order %q", p.RedoOrder)
	}
	if p.HistoryLimit > 0 {
		opts = append(opts, engine.WithHistoryLimit(p.HistoryLimit))
	}
	return opts, nil
}

// scriptedIDs hands out a scenario's ids, then falls back to m-1, m-2, ...
// without repeating a scripted one.
type scriptedIDs struct {
	ids      []string
	scripted map[string]bool
	next     int
	fallback *testutil.SequenceIDGenerator
}

func newScriptedIDs(ids []string) *scriptedIDs {
	scripted := make(map[string]bool, len(ids))
	for _, id := range ids {
		scripted[id] = true
	}
	return &scriptedIDs{
		ids:      ids,
		scripted: scripted,
		fallback: testutil.NewSequenceIDGenerator("m"),
	}
}

func (g *scriptedIDs) Generate() string {
	if g.next < len(g.ids) {
		id := g.ids[g.next]
		g.next++
		return id
	}
	for {
		id := g.fallback.Generate()
		if !g.scripted[id] {
			return id
		}
	}
}
