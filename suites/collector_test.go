package suites

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityadwic/mongo-acceptor/types"
)

func TestCollectorRecordsFailuresAndContinues(t *testing.T) {
	col := NewCollector(types.CategoryFunctional, nil)

	col.Run("passing", func() (string, error) {
		return "ok", nil
	})
	col.Run("failing", func() (string, error) {
		return "", errors.New("target unreachable")
	})
	col.Run("panicking", func() (string, error) {
		panic("nil map write")
	})
	col.Run("after-panic", func() (string, error) {
		return "still running", nil
	})

	result := col.Result()
	require.Len(t, result.Checks, 4)

	assert.Equal(t, types.CheckStatusPass, result.Checks[0].Status)
	assert.Equal(t, types.CheckStatusFail, result.Checks[1].Status)
	assert.Equal(t, "target unreachable", result.Checks[1].Details)
	assert.Equal(t, types.CheckStatusFail, result.Checks[2].Status)
	assert.Contains(t, result.Checks[2].Details, "panic")
	assert.Equal(t, types.CheckStatusPass, result.Checks[3].Status)

	counts := result.Counts()
	assert.Equal(t, 2, counts.Passed)
	assert.Equal(t, 2, counts.Failed)
}

func TestCollectorMetrics(t *testing.T) {
	col := NewCollector(types.CategoryPerformance, nil)
	col.SetMetric("bulk_insert_rate", 1234.5)

	result := col.Result()
	assert.Equal(t, 1234.5, result.Metrics["bulk_insert_rate"])

	// Result snapshots; later mutation must not leak into the snapshot.
	col.SetMetric("bulk_insert_rate", 0)
	assert.Equal(t, 1234.5, result.Metrics["bulk_insert_rate"])
}

func TestCollectorWriteNaming(t *testing.T) {
	dir := t.TempDir()
	col := NewCollector(types.CategorySecurity, nil)
	col.Run("noop", func() (string, error) { return "ok", nil })

	result, path, err := col.Write(dir)
	require.NoError(t, err)
	require.NotNil(t, result)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "security_report_"), "unexpected name %q", base)
	assert.True(t, strings.HasSuffix(base, ".json"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded types.SuiteResult
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, types.CategorySecurity, decoded.Category)
	require.Len(t, decoded.Checks, 1)
	assert.Equal(t, "noop", decoded.Checks[0].Name)
}
