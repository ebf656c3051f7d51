package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			// First run with -update to create golden files:
			//   go test ./internal/harness -run TestRunWithGolden_Scenarios -update
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_OnlyActualTimelines(t *testing.T) {
	result := NewResult("snap")
	result.Add(ExpectationResult{
		Kind:     KindObservable,
		Source:   "src",
		Pass:     false,
		Actual:   []any{},
		Expected: "ignored",
		Error:    "mismatch",
	})

	data, err := Snapshot(result)
	require.NoError(t, err)
	assert.Equal(t, `{"expectations":[{"actual":[],"kind":"observable","source":"src"}],"scenario":"snap"}`, string(data))
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"mismatch"}, result.Errors)
}
