package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityadwic/mongo-acceptor/types"
)

func writeReportFile(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
}

func suiteFixture(cat types.Category, status types.CheckStatus, detail string) *types.SuiteResult {
	return &types.SuiteResult{
		Category:  cat,
		Timestamp: time.Now(),
		Checks:    []types.CheckResult{{Name: "probe", Status: status, Details: detail}},
	}
}

func TestLoadLatestPicksNewestFiles(t *testing.T) {
	dir := t.TempDir()

	writeReportFile(t, dir, "functional_report_20250101_000000.json",
		suiteFixture(types.CategoryFunctional, types.CheckStatusFail, "stale"))
	writeReportFile(t, dir, "functional_report_20250102_000000.json",
		suiteFixture(types.CategoryFunctional, types.CheckStatusPass, "fresh"))

	summary := types.NewRunSummary(map[types.Category]bool{types.CategoryFunctional: true})
	writeReportFile(t, dir, "test_summary_20250102_000001.json", summary)

	ctx, err := LoadLatest(dir)
	require.NoError(t, err)

	require.NotNil(t, ctx.Summary)
	assert.Equal(t, types.CheckStatusPass, ctx.Summary.OverallStatus)

	require.NotNil(t, ctx.Functional)
	assert.Equal(t, "fresh", ctx.Functional.Checks[0].Details)
	assert.Nil(t, ctx.Performance)
	assert.Nil(t, ctx.Security)
	assert.Nil(t, ctx.Validation)
}

func TestLoadLatestEmptyDirectory(t *testing.T) {
	ctx, err := LoadLatest(t.TempDir())
	require.NoError(t, err)
	assert.True(t, ctx.Empty())
	assert.Empty(t, ctx.Present())
}

func TestLoadLatestMissingDirectory(t *testing.T) {
	ctx, err := LoadLatest(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)
	assert.True(t, ctx.Empty())
}

func TestLoadLatestMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "security_report_20250101_000000.json"),
		[]byte("{not json"), 0o644))

	_, err := LoadLatest(dir)
	assert.Error(t, err)
}

func TestContextAccessors(t *testing.T) {
	ctx := &Context{
		GeneratedAt: time.Now(),
		Performance: suiteFixture(types.CategoryPerformance, types.CheckStatusPass, ""),
		Validation:  suiteFixture(types.CategoryValidation, types.CheckStatusPass, ""),
	}

	assert.False(t, ctx.Empty())
	present := ctx.Present()
	require.Len(t, present, 2)
	// Execution order, not load order.
	assert.Equal(t, types.CategoryPerformance, present[0].Category)
	assert.Equal(t, types.CategoryValidation, present[1].Category)

	m := ctx.SuiteMap()
	assert.Len(t, m, 2)
	assert.NotNil(t, m[types.CategoryPerformance])
	assert.Nil(t, ctx.Suite(types.CategoryFunctional))
}
