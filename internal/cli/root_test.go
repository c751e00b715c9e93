package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: one_line
description: a single calibrated measurement
ids: [A]
steps:
  - action: down
  - action: move
    x: 3
    y: 4
  - action: up
  - action: select_scale
    scale: "100"
assertions:
  - type: formatted_distance
    index: 1
    text: 0.63 m
`

const failingScenario = `name: wrong_text
description: expects the wrong distance
steps:
  - action: down
  - action: move
    x: 3
    y: 4
  - action: up
assertions:
  - type: formatted_distance
    index: 1
    text: 9.99 m
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse unmarshals a JSON envelope, decoding Data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "takeoff", cmd.Use)
	assert.Contains(t, cmd.Long, "drawing scale")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"scales", "validate", "run", "test", "replay"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	scalesFlag := cmd.PersistentFlags().Lookup("scales")
	require.NotNil(t, scalesFlag)
	assert.Equal(t, "", scalesFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "scales", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestExitError(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open journal", inner)

	assert.Equal(t, "failed to open journal: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	assert.Equal(t, "scenario failed", NewExitError(ExitFailure, "scenario failed").Error())
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
}

func TestOutputFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"n": 1}, nil))
	var data map[string]int
	resp := decodeResponse(t, buf.String(), &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, data["n"])

	buf.Reset()
	err := f.Failure(CodeInvalid, "validation failed", nil, nil)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp = decodeResponse(t, buf.String(), nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalid, resp.Error.Code)

	buf.Reset()
	text := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, text.Success("hello", nil))
	assert.Equal(t, "hello\n", buf.String())
}
