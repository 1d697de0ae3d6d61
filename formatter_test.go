package acceptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adityadwic/mongo-acceptor/runner"
	"github.com/adityadwic/mongo-acceptor/types"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "0.0s", formatDuration(0))
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "pass", getResultString(true))
	assert.Equal(t, "fail", getResultString(false))
}

func TestFormatResultsHandlesMissingSuiteReports(t *testing.T) {
	result := &runner.Result{
		Summary: types.NewRunSummary(map[types.Category]bool{
			types.CategoryFunctional: true,
			types.CategorySecurity:   false,
		}),
		Executions: []runner.SuiteExecution{
			{Category: types.CategoryFunctional, Passed: true, Duration: time.Second},
			{Category: types.CategorySecurity, Passed: false, ExitCode: 1},
		},
	}

	f := NewConsoleResultFormatter(zap.NewNop())
	// No persisted suite reports available; the table falls back to "-".
	require.NoError(t, f.FormatResults(result, nil))
}
