package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/takeoff/internal/engine"
	"github.com/roach88/takeoff/internal/journal"
)

func TestReplay_VerifiesRecordedSessions(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "takeoff.db")
	path := writeFile(t, dir, "one.yaml", passingScenario)

	for _, id := range []string{"s1", "s2"} {
		_, err := execute(t, "run", path, "--journal", dbPath, "--session", id)
		require.NoError(t, err)
	}

	out, err := execute(t, "replay", "--journal", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 2 session(s)")
	assert.Contains(t, out, "✓ Session: s1")
	assert.Contains(t, out, "Events: 4 applied, 0 rejected")
	assert.Contains(t, out, "✓ All sessions verified deterministic")

	out, err = execute(t, "replay", "--journal", dbPath, "--session", "s2", "--format", "json")
	require.NoError(t, err)
	var result ReplayResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Sessions, 1)
	s := result.Sessions[0]
	assert.Equal(t, "s2", s.Session)
	assert.Equal(t, 1, s.Measurements)
	assert.Equal(t, s.Recorded, s.Replayed)
	assert.True(t, result.AllDeterministic)
}

func TestReplay_DigestMismatch(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "takeoff.db")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, j.BeginSession(ctx, "tampered", ""))
	require.NoError(t, j.Append(ctx, "tampered", 1, engine.Event{Type: engine.EventSelectScale, Scale: "100"}))
	require.NoError(t, j.FinishSession(ctx, "tampered", "not-the-digest"))
	require.NoError(t, j.Close())

	out, err := execute(t, "replay", "--journal", dbPath, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ReplayResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeDeterminism, resp.Error.Code)
	assert.False(t, result.AllDeterministic)
}

func TestReplay_UnfinishedSession(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "takeoff.db")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, j.BeginSession(ctx, "open", "plan.pdf"))
	require.NoError(t, j.Append(ctx, "open", 1, engine.Event{Type: engine.EventSelectScale, Scale: "nope"}))
	require.NoError(t, j.Close())

	out, err := execute(t, "replay", "--journal", dbPath, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Events: 0 applied, 1 rejected")
	assert.Contains(t, out, "Document: plan.pdf")
	assert.Contains(t, out, "Unfinished")
}

func TestReplay_EmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "takeoff.db")
	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	out, err := execute(t, "replay", "--journal", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found in journal.")
}

func TestReplay_Errors(t *testing.T) {
	_, err := execute(t, "replay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")

	missing := filepath.Join(t.TempDir(), "nope.db")
	_, err = execute(t, "replay", "--journal", missing)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	dbPath := filepath.Join(t.TempDir(), "takeoff.db")
	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = execute(t, "replay", "--journal", dbPath, "--session", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "session not found: ghost")
}
