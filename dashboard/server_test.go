package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityadwic/mongo-acceptor/reporting"
	"github.com/adityadwic/mongo-acceptor/types"
)

func newTestServer(t *testing.T, reportsDir string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(reportsDir, ":0", nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func seedReports(t *testing.T, dir string) {
	t.Helper()
	summary := types.NewRunSummary(map[types.Category]bool{
		types.CategoryFunctional: true,
		types.CategorySecurity:   false,
	})
	writeJSON(t, dir, "test_summary_20250601_120000.json", summary)
	writeJSON(t, dir, "security_report_20250601_115959.json", &types.SuiteResult{
		Category:  types.CategorySecurity,
		Timestamp: time.Now(),
		Checks: []types.CheckResult{
			{Name: "Operator Injection Probe", Status: types.CheckStatusFail, Details: "matched"},
		},
	})
}

func writeJSON(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
}

func TestIndexServesDashboardPage(t *testing.T) {
	ts := newTestServer(t, t.TempDir())

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestAPIDataReturnsLatestResults(t *testing.T) {
	dir := t.TempDir()
	seedReports(t, dir)
	ts := newTestServer(t, dir)

	resp, err := http.Get(ts.URL + "/api/data")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var data reporting.Context
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	require.NotNil(t, data.Summary)
	assert.Equal(t, types.CheckStatusFail, data.Summary.OverallStatus)
	require.NotNil(t, data.Security)
	assert.Equal(t, "Operator Injection Probe", data.Security.Checks[0].Name)
	assert.Nil(t, data.Performance)
}

func TestAPIDataPicksUpNewFilesWithoutRestart(t *testing.T) {
	dir := t.TempDir()
	ts := newTestServer(t, dir)

	resp, err := http.Get(ts.URL + "/api/data")
	require.NoError(t, err)
	var before reporting.Context
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&before))
	resp.Body.Close()
	assert.Nil(t, before.Summary)

	seedReports(t, dir)

	resp, err = http.Get(ts.URL + "/api/data")
	require.NoError(t, err)
	defer resp.Body.Close()
	var after reporting.Context
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&after))
	assert.NotNil(t, after.Summary)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, t.TempDir())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, t.TempDir())

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
