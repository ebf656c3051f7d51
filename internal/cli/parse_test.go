package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseCommand_Text(t *testing.T) {
	out, err := executeRoot(t, "parse", "--a--b--|")
	require.NoError(t, err)
	assert.Equal(t, "20:next(a)\n50:next(b)\n80:complete\n", out)
}

func TestParseCommand_Factor(t *testing.T) {
	out, err := executeRoot(t, "parse", "-(ab)#", "--factor", "1")
	require.NoError(t, err)
	assert.Equal(t, "1:next(a)\n1:next(b)\n2:error(error)\n", out)
}

func TestParseCommand_RunMode(t *testing.T) {
	out, err := executeRoot(t, "parse", "a 10ms b|", "--run-mode")
	require.NoError(t, err)
	assert.Equal(t, "0:next(a)\n11:next(b)\n12:complete\n", out)
}

func TestParseCommand_EmptyTimeline(t *testing.T) {
	out, err := executeRoot(t, "parse", "----")
	require.NoError(t, err)
	assert.Equal(t, "(no notifications)\n", out)
}

func TestParseCommand_Subscription(t *testing.T) {
	out, err := executeRoot(t, "parse", "--^---!", "--subscription")
	require.NoError(t, err)
	assert.Equal(t, "{20, 60}\n", out)
}

func TestParseCommand_JSON(t *testing.T) {
	out, err := executeRoot(t, "--format", "json", "parse", "-a|")
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   struct {
			Marbles  string          `json:"marbles"`
			Timeline json.RawMessage `json:"timeline"`
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "-a|", resp.Data.Marbles)
	assert.JSONEq(t,
		`[{"frame":10,"notification":{"kind":"next","value":"a"}},{"frame":20,"notification":{"kind":"complete"}}]`,
		string(resp.Data.Timeline))
}

func TestParseCommand_SyntaxError(t *testing.T) {
	out, err := executeRoot(t, "parse", "--(a--|")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_SYNTAX]")
	assert.Contains(t, out, "unbalanced '('")
}

func TestParseCommand_SyntaxErrorJSON(t *testing.T) {
	out, err := executeRoot(t, "--format", "json", "parse", "^--^")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_SYNTAX", resp.Error.Code)
}

func TestParseCommand_RejectsNonPositiveFactor(t *testing.T) {
	_, err := executeRoot(t, "parse", "-a|", "--factor", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "factor must be positive")
}

func TestTimeCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default factor", []string{"time", "-----|"}, "50\n"},
		{"factor one", []string{"time", "--|", "--factor", "1"}, "2\n"},
		{"run mode", []string{"time", "1s |", "--run-mode"}, "1000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeRoot(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTimeCommand_MissingCompletion(t *testing.T) {
	out, err := executeRoot(t, "time", "-----")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "completion marker")
}

func TestTimeCommand_JSON(t *testing.T) {
	out, err := executeRoot(t, "--format", "json", "time", "---|")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"marbles":"---|","frames":30}}`, out)
}
