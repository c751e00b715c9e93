package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario failure, invalid file, digest mismatch
	ExitCommandError = 2 // Command error (missing paths, unreadable journal, etc.)
)

// Error codes reported in JSON responses.
const (
	CodeScenarioFailed = "E_SCENARIO"
	CodeInvalid        = "E_INVALID"
	CodeDeterminism    = "E_DETERMINISM"
)

// ExitError carries the process exit code for a command failure.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string
	Err     error // optional
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope every command writes with --format json.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // command payload
	Error  *CLIError `json:"error,omitempty"` // set when Status is "error"
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter renders command results as JSON or text.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// JSON reports whether the formatter writes JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data. In text mode text renders it; a nil text prints
// data with fmt.
func (f *OutputFormatter) Success(data any, text func(io.Writer)) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	if text == nil {
		fmt.Fprintln(f.Writer, data)
		return nil
	}
	text(f.Writer)
	return nil
}

// Failure writes data alongside an error and returns the ExitError the
// command should exit with.
func (f *OutputFormatter) Failure(code, message string, data any, text func(io.Writer)) error {
	if f.JSON() {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		}); err != nil {
			return err
		}
	} else if text != nil {
		text(f.Writer)
	}
	return NewExitError(ExitFailure, message)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
