package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/takeoff/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Golden string // golden snapshot directory; empty skips golden comparison
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run every scenario in a directory",
		Long: `Run all scenario files in a directory, checking step expectations and
final state assertions. With --golden, each scenario's trace and final
state are also compared against <golden>/<name>.golden.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  takeoff test ./scenarios
  takeoff test ./scenarios --filter "undo*"
  takeoff test ./scenarios --golden ./golden --update
  takeoff test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Golden, "golden", "", "compare against golden snapshots in this directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}
	if opts.Update && opts.Golden == "" {
		return NewExitError(ExitCommandError, "--update requires --golden")
	}
	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "failed to create golden directory", err)
		}
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.logger(cmd.ErrOrStderr())

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runOneScenario(ctx, opts, file, harness.WithRegistry(reg), harness.WithLogger(logger))
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	text := func(w io.Writer) { writeTestText(w, result) }
	if result.Failed > 0 {
		return out.Failure(CodeScenarioFailed, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total), result, text)
	}
	return out.Success(result, text)
}

// findScenarioFiles lists the .yaml and .yml files in dir whose base name
// (without extension) matches filter. The result is sorted.
func findScenarioFiles(dir, filter string) ([]string, error) {
	if _, err := filepath.Match(filter, ""); err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func runOneScenario(ctx context.Context, opts *TestOptions, file string, runOpts ...harness.RunOption) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	sr := ScenarioResult{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
	if opts.Golden == "" {
		return sr
	}
	if err := checkGolden(opts, scenario.Name, result); err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, err.Error())
	}
	return sr
}

func checkGolden(opts *TestOptions, name string, result *harness.Result) error {
	snapshot, err := harness.GoldenSnapshot(name, result)
	if err != nil {
		return fmt.Errorf("golden snapshot: %w", err)
	}
	path := filepath.Join(opts.Golden, name+".golden")

	if opts.Update {
		if err := os.WriteFile(path, snapshot, 0o644); err != nil {
			return fmt.Errorf("failed to update golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("golden file %s missing (run with --update)", path)
	}
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, snapshot) {
		return fmt.Errorf("golden mismatch for %s", path)
	}
	return nil
}

func writeTestText(w io.Writer, r TestResult) {
	if r.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, s := range r.Scenarios {
		fmt.Fprintf(w, "%s %s\n", mark(s.Pass), s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
}
