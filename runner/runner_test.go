package runner

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityadwic/mongo-acceptor/types"
)

// stubCommands maps a suite category to the command the runner should spawn
// in its place.
func stubCommands(t *testing.T, outcomes map[types.Category]string) commandFunc {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		require.Len(t, args, 2)
		require.Equal(t, "suite", args[0])
		program, ok := outcomes[types.Category(args[1])]
		require.True(t, ok, "unexpected suite %q", args[1])
		return exec.CommandContext(ctx, program)
	}
}

func newTestRunner(t *testing.T, outcomes map[types.Category]string) *Runner {
	t.Helper()
	cats := make([]types.Category, 0, len(outcomes))
	for _, cat := range types.ExecutionOrder {
		if _, ok := outcomes[cat]; ok {
			cats = append(cats, cat)
		}
	}
	r := New(Config{
		Binary:     "unused-by-stub",
		Categories: cats,
		ReportsDir: t.TempDir(),
		MongoURI:   "mongodb://localhost:27017/",
	})
	r.newCommand = stubCommands(t, outcomes)
	return r
}

func TestRunAllSuitesPass(t *testing.T) {
	r := newTestRunner(t, map[types.Category]string{
		types.CategoryFunctional:  "true",
		types.CategoryPerformance: "true",
		types.CategorySecurity:    "true",
		types.CategoryValidation:  "true",
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Summary.AllPassed())
	assert.Equal(t, 4, result.Summary.TotalSuites)
	assert.Equal(t, 4, result.Summary.PassedSuites)
	assert.Equal(t, 0, result.Summary.FailedSuites)
	require.Len(t, result.Executions, 4)
	for _, exe := range result.Executions {
		assert.True(t, exe.Passed, "suite %s", exe.Category)
		assert.Equal(t, 0, exe.ExitCode)
	}
}

func TestRunFailureDoesNotHaltLaterSuites(t *testing.T) {
	r := newTestRunner(t, map[types.Category]string{
		types.CategoryFunctional:  "true",
		types.CategoryPerformance: "false",
		types.CategorySecurity:    "true",
		types.CategoryValidation:  "true",
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Summary.AllPassed())
	assert.Equal(t, types.CheckStatusFail, result.Summary.OverallStatus)
	assert.Equal(t, 3, result.Summary.PassedSuites)
	assert.Equal(t, 1, result.Summary.FailedSuites)
	assert.Equal(t, types.CheckStatusFail, result.Summary.SuiteResults[types.CategoryPerformance])

	// Every configured suite ran despite the failure in the middle.
	require.Len(t, result.Executions, 4)
	assert.Equal(t, types.CategoryValidation, result.Executions[3].Category)
	assert.True(t, result.Executions[3].Passed)
	assert.False(t, result.Executions[1].Passed)
	assert.NotEqual(t, 0, result.Executions[1].ExitCode)
}

func TestRunSpawnFailureRecordedAsSuiteFailure(t *testing.T) {
	r := newTestRunner(t, map[types.Category]string{
		types.CategoryFunctional: "/nonexistent/binary/for/this/test",
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Summary.AllPassed())
	require.Len(t, result.Executions, 1)
	assert.Equal(t, -1, result.Executions[0].ExitCode)
}

func TestRunWritesSummaryFile(t *testing.T) {
	r := newTestRunner(t, map[types.Category]string{
		types.CategoryFunctional: "true",
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	base := filepath.Base(result.SummaryPath)
	assert.True(t, strings.HasPrefix(base, "test_summary_"), "unexpected name %q", base)
	assert.True(t, strings.HasSuffix(base, ".json"))

	raw, err := os.ReadFile(result.SummaryPath)
	require.NoError(t, err)

	var decoded types.RunSummary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, result.Summary.OverallStatus, decoded.OverallStatus)
	assert.Equal(t, result.Summary.TotalSuites, decoded.TotalSuites)
	assert.NotEmpty(t, decoded.Recommendations)
}

func TestRunDefaultsToFullExecutionOrder(t *testing.T) {
	r := New(Config{Binary: "x", ReportsDir: t.TempDir()})
	assert.Equal(t, types.ExecutionOrder, r.cfg.Categories)
}
