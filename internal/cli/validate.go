package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/takeoff/internal/calibration"
	"github.com/roach88/takeoff/internal/harness"
)

// FileValidation is the verdict for one scale table or scenario file.
type FileValidation struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"` // "scales" | "scenario"
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate scale tables and scenarios without running them",
		Long: `Check CUE scale tables (.cue) and scenario files (.yaml, .yml) for
syntax, unknown fields and missing values. Directories are searched
recursively.

Examples:
  takeoff validate ./scales.cue
  takeoff validate ./scenarios ./imperial.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	var files []string
	for _, p := range paths {
		found, err := collectValidatable(p)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", p), err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return NewExitError(ExitCommandError, "no .cue or .yaml files found")
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, f := range files {
		v := validateFile(f)
		if !v.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, v)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	text := func(w io.Writer) { writeValidateText(w, result) }
	if !result.Valid {
		return out.Failure(CodeInvalid, "validation failed", result, text)
	}
	return out.Success(result, text)
}

func collectValidatable(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && fileKind(p) != "" {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func fileKind(path string) string {
	switch filepath.Ext(path) {
	case ".cue":
		return "scales"
	case ".yaml", ".yml":
		return "scenario"
	}
	return ""
}

func validateFile(path string) FileValidation {
	v := FileValidation{Path: path, Kind: fileKind(path)}

	var err error
	switch v.Kind {
	case "scales":
		_, err = calibration.LoadFile(path)
	case "scenario":
		_, err = harness.LoadScenario(path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err == nil {
		v.Valid = true
		return v
	}

	v.Message = err.Error()
	var loadErr *calibration.LoadError
	if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
		v.Line = loadErr.Pos.Line()
	}
	return v
}

func writeValidateText(w io.Writer, r ValidationResult) {
	for _, f := range r.Files {
		fmt.Fprintf(w, "%s %s (%s)\n", mark(f.Valid), f.Path, f.Kind)
		if f.Message != "" {
			fmt.Fprintf(w, "  %s\n", f.Message)
		}
	}
	if r.Valid {
		fmt.Fprintln(w, "✓ Validation passed")
		return
	}
	fmt.Fprintln(w, "✗ Validation failed")
}
