package acceptor

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"github.com/adityadwic/mongo-acceptor/runner"
	"github.com/adityadwic/mongo-acceptor/types"
)

// ResultFormatter renders a finished run for a human.
type ResultFormatter interface {
	FormatResults(result *runner.Result, suites map[types.Category]*types.SuiteResult) error
}

// ConsoleResultFormatter renders the run as a colored table on stdout. The
// per-check counts come from the persisted suite reports, so a suite that
// exited zero while recording FAIL checks is still visible at a glance.
type ConsoleResultFormatter struct {
	logger *zap.Logger
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger *zap.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{logger: logger}
}

// FormatResults formats and displays the run results.
func (f *ConsoleResultFormatter) FormatResults(result *runner.Result, suites map[types.Category]*types.SuiteResult) error {
	f.logger.Info("printing results")

	var total time.Duration
	for _, exe := range result.Executions {
		total += exe.Duration
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("MongoDB Acceptance Results (%s)", formatDuration(total)))

	t.AppendHeader(table.Row{
		"Suite", "Duration", "Checks", "Passed", "Failed", "Warnings", "Status",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", WidthMax: 30, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Checks", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Warnings", Align: text.AlignRight},
	})

	var grand types.CheckCounts
	totalChecks := 0
	for _, exe := range result.Executions {
		checks, passed, failed, warnings := "-", "-", "-", "-"
		if sr, ok := suites[exe.Category]; ok && sr != nil {
			counts := sr.Counts()
			checks = fmt.Sprint(len(sr.Checks))
			passed = fmt.Sprint(counts.Passed)
			failed = fmt.Sprint(counts.Failed)
			warnings = fmt.Sprint(counts.Warnings)
			grand.Passed += counts.Passed
			grand.Failed += counts.Failed
			grand.Warnings += counts.Warnings
			totalChecks += len(sr.Checks)
		}
		t.AppendRow(table.Row{
			exe.Category.DisplayName(),
			formatDuration(exe.Duration),
			checks,
			passed,
			failed,
			warnings,
			getResultString(exe.Passed),
		})
	}

	if result.Summary.AllPassed() {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		formatDuration(total),
		totalChecks,
		grand.Passed,
		grand.Failed,
		grand.Warnings,
		getResultString(result.Summary.AllPassed()),
	})

	t.Render()

	fmt.Printf("Suites: %d passed, %d failed (overall %s)\n",
		result.Summary.PassedSuites,
		result.Summary.FailedSuites,
		result.Summary.OverallStatus)
	return nil
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func getResultString(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}
