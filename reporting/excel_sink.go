package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/adityadwic/mongo-acceptor/types"
)

// ExcelSink renders a Context into a spreadsheet: one Summary sheet plus one
// sheet per suite that has results.
type ExcelSink struct{}

// NewExcelSink creates an ExcelSink.
func NewExcelSink() *ExcelSink {
	return &ExcelSink{}
}

// Generate writes mongodb_test_report_<timestamp>.xlsx into reportsDir and
// returns its path.
func (s *ExcelSink) Generate(ctx *Context, reportsDir string) (string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return "", fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if err := s.writeSummary(f, ctx); err != nil {
		return "", err
	}

	for _, cat := range types.ExecutionOrder {
		result := ctx.Suite(cat)
		if result == nil {
			continue
		}
		if err := s.writeSuite(f, cat, result); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	name := fmt.Sprintf("mongodb_test_report_%s.xlsx", types.ReportTimestamp(ctx.GeneratedAt))
	path := filepath.Join(reportsDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return path, nil
}

func (s *ExcelSink) writeSummary(f *excelize.File, ctx *Context) error {
	rows := [][]interface{}{
		{"MongoDB Test Report"},
		{"Generated", ctx.GeneratedAt.Format("2006-01-02 15:04:05")},
		{},
	}
	if summary := ctx.Summary; summary != nil {
		rows = append(rows,
			[]interface{}{"Overall Status", string(summary.OverallStatus)},
			[]interface{}{"Total Suites", summary.TotalSuites},
			[]interface{}{"Passed Suites", summary.PassedSuites},
			[]interface{}{"Failed Suites", summary.FailedSuites},
			[]interface{}{},
			[]interface{}{"Suite", "Status"},
		)
		for _, cat := range types.ExecutionOrder {
			if status, ok := summary.SuiteResults[cat]; ok {
				rows = append(rows, []interface{}{cat.DisplayName(), string(status)})
			}
		}
	} else {
		rows = append(rows, []interface{}{"No run summary available"})
	}
	return writeRows(f, "Summary", rows)
}

func (s *ExcelSink) writeSuite(f *excelize.File, cat types.Category, result *types.SuiteResult) error {
	sheet := cat.DisplayName()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Check", "Status", "Details"},
	}
	for _, check := range result.Checks {
		rows = append(rows, []interface{}{check.Name, string(check.Status), check.Details})
	}

	if len(result.Metrics) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Metric", "Value"})
		names := make([]string, 0, len(result.Metrics))
		for name := range result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, []interface{}{name, result.Metrics[name]})
		}
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %q: %w", i+1, sheet, err)
		}
	}
	return nil
}
