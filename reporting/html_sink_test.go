package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityadwic/mongo-acceptor/types"
)

func TestHTMLSinkRendersAllSections(t *testing.T) {
	dir := t.TempDir()
	summary := types.NewRunSummary(map[types.Category]bool{
		types.CategoryFunctional: true,
		types.CategorySecurity:   false,
	})
	ctx := &Context{
		GeneratedAt: time.Now(),
		Summary:     &summary,
		Functional:  suiteFixture(types.CategoryFunctional, types.CheckStatusPass, "connected in 12ms"),
		Security:    suiteFixture(types.CategorySecurity, types.CheckStatusFail, "operator injection matched"),
	}

	sink, err := NewHTMLSink()
	require.NoError(t, err)

	path, err := sink.Generate(ctx, dir)
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "mongodb_test_report_"), "unexpected name %q", base)
	assert.True(t, strings.HasSuffix(base, ".html"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(raw)

	assert.Contains(t, html, "connected in 12ms")
	assert.Contains(t, html, "operator injection matched")
	// Categories without results render a placeholder, not nothing.
	assert.Contains(t, html, "Performance Tests")
	assert.Contains(t, html, "Data Validation Tests")
	assert.Contains(t, html, "No results recorded for this suite yet.")
	assert.Contains(t, html, "Recommendations")
}

func TestHTMLSinkEmbedsCharts(t *testing.T) {
	dir := t.TempDir()
	perf := suiteFixture(types.CategoryPerformance, types.CheckStatusPass, "")
	perf.Metrics = map[string]float64{
		"single_insert_rate": 420.5,
		"bulk_insert_rate":   10500.0,
	}
	ctx := &Context{GeneratedAt: time.Now(), Performance: perf}

	sink, err := NewHTMLSink()
	require.NoError(t, err)

	path, err := sink.Generate(ctx, dir)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(raw), "data:image/png;base64,")
	assert.Contains(t, string(raw), "Insert Throughput")
}

func TestPerformanceChartsNilResult(t *testing.T) {
	charts, err := PerformanceCharts(nil)
	require.NoError(t, err)
	assert.Empty(t, charts)
}

func TestMetricSeries(t *testing.T) {
	labels, values := metricSeries(map[string]float64{
		"query_by_age_qps":     120,
		"query_by_city_qps":    80,
		"query_by_age_seconds": 0.008,
		"unrelated":            1,
	}, "query_", "_qps")

	assert.Equal(t, []string{"by_age", "by_city"}, labels)
	assert.Equal(t, []float64{120, 80}, values)
}
