package reporting

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/adityadwic/mongo-acceptor/types"
)

func TestExcelSinkSheets(t *testing.T) {
	dir := t.TempDir()
	summary := types.NewRunSummary(map[types.Category]bool{
		types.CategoryFunctional: true,
		types.CategoryValidation: true,
	})
	validation := suiteFixture(types.CategoryValidation, types.CheckStatusPass, "875.00 balance")
	validation.Metrics = map[string]float64{"quality_duplicate_emails": 0}

	ctx := &Context{
		GeneratedAt: time.Now(),
		Summary:     &summary,
		Functional:  suiteFixture(types.CategoryFunctional, types.CheckStatusPass, "ok"),
		Validation:  validation,
	}

	path, err := NewExcelSink().Generate(ctx, dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filepath.Base(path), ".xlsx"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Functional Tests")
	assert.Contains(t, sheets, "Data Validation Tests")
	assert.NotContains(t, sheets, "Performance Tests")

	rows, err := f.GetRows("Data Validation Tests")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Check", "Status", "Details"}, rows[0][:3])
}

func TestExcelSinkWithoutSummary(t *testing.T) {
	ctx := &Context{GeneratedAt: time.Now()}

	path, err := NewExcelSink().Generate(ctx, t.TempDir())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Summary"}, f.GetSheetList())
}
