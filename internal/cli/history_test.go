package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marbles/internal/engine"
)

// seedHistory records two cold_map runs and one wrong_take run.
func seedHistory(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	dbPath := filepath.Join(dir, "runs.db")
	writeScenario(t, scenarios, "cold_map.yaml", coldMapScenario)
	writeScenario(t, scenarios, "wrong_take.yaml", failingScenario)

	opts := &TestOptions{
		RootOptions: &RootOptions{Format: "text"},
		IDs:         engine.NewFixedGenerator("run-a", "run-b", "run-c"),
	}
	_, execute := newTestCmd(opts, scenarios, "--db", dbPath)
	require.Error(t, execute(), "wrong_take fails")
	_, execute = newTestCmd(opts, scenarios, "--db", dbPath, "--filter", "cold_map")
	require.NoError(t, execute())
	return dbPath
}

func executeHistory(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryCommand_Text(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "text", dbPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "SEQ")
	assert.Contains(t, lines[1], "cold_map")
	assert.Contains(t, lines[1], "run-a")
	assert.Contains(t, lines[2], "wrong_take")
	assert.Contains(t, lines[2], "false")
	assert.Contains(t, lines[3], "run-c")
}

func TestHistoryCommand_ScenarioFilterJSON(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "json", dbPath, "--scenario", "cold_map")
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   []HistoryEntry
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "run-a", resp.Data[0].ID)
	assert.Equal(t, "run-c", resp.Data[1].ID)
	assert.Less(t, resp.Data[0].Seq, resp.Data[1].Seq)
	assert.Equal(t, resp.Data[0].Digest, resp.Data[1].Digest, "identical runs share a digest")
	assert.True(t, resp.Data[0].Pass)
}

func TestHistoryCommand_UnknownScenario(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "text", dbPath, "--scenario", "nope")
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistoryCommand_MissingDatabase(t *testing.T) {
	_, err := executeHistory(t, "text", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}
