package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunSummary_AllPassed(t *testing.T) {
	summary := NewRunSummary(map[Category]bool{
		CategoryFunctional:  true,
		CategoryPerformance: true,
		CategorySecurity:    true,
		CategoryValidation:  true,
	})

	assert.Equal(t, 4, summary.TotalSuites)
	assert.Equal(t, 4, summary.PassedSuites)
	assert.Equal(t, 0, summary.FailedSuites)
	assert.Equal(t, CheckStatusPass, summary.OverallStatus)
	assert.True(t, summary.AllPassed())
	assert.Equal(t, CheckStatusPass, summary.SuiteResults[CategorySecurity])
}

func TestNewRunSummary_SingleFailureFailsRun(t *testing.T) {
	summary := NewRunSummary(map[Category]bool{
		CategoryFunctional:  true,
		CategoryPerformance: false,
	})

	assert.Equal(t, 2, summary.TotalSuites)
	assert.Equal(t, 1, summary.PassedSuites)
	assert.Equal(t, 1, summary.FailedSuites)
	assert.Equal(t, CheckStatusFail, summary.OverallStatus)
	assert.False(t, summary.AllPassed())
	assert.Equal(t, CheckStatusFail, summary.SuiteResults[CategoryPerformance])
}

func TestNewRunSummary_Empty(t *testing.T) {
	summary := NewRunSummary(nil)
	assert.Equal(t, 0, summary.TotalSuites)
	assert.True(t, summary.AllPassed(), "a run with no suites has nothing failing")
}

func TestSuiteResultCounts(t *testing.T) {
	result := SuiteResult{
		Category: CategorySecurity,
		Checks: []CheckResult{
			{Name: "a", Status: CheckStatusPass},
			{Name: "b", Status: CheckStatusPass},
			{Name: "c", Status: CheckStatusFail},
			{Name: "d", Status: CheckStatusWarning},
			{Name: "e", Status: CheckStatusInfo},
		},
	}

	counts := result.Counts()
	assert.Equal(t, 2, counts.Passed)
	assert.Equal(t, 1, counts.Failed)
	assert.Equal(t, 1, counts.Warnings)
	assert.Equal(t, 1, counts.Infos)
}

func TestParseCategory(t *testing.T) {
	cat, err := ParseCategory("performance")
	require.NoError(t, err)
	assert.Equal(t, CategoryPerformance, cat)

	_, err = ParseCategory("chaos")
	assert.Error(t, err)
}

func TestCheckStatusValid(t *testing.T) {
	for _, s := range []CheckStatus{CheckStatusPass, CheckStatusFail, CheckStatusWarning, CheckStatusInfo} {
		assert.True(t, s.Valid())
	}
	assert.False(t, CheckStatus("MAYBE").Valid())
}

func TestReportTimestampOrdering(t *testing.T) {
	earlier := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	later := time.Date(2025, 3, 1, 10, 0, 1, 0, time.UTC)
	assert.Less(t, ReportTimestamp(earlier), ReportTimestamp(later),
		"filename timestamps must sort lexicographically in chronological order")
}
