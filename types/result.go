package types

import (
	"fmt"
	"time"
)

// CheckStatus represents the outcome of a single check within a suite.
type CheckStatus string

const (
	CheckStatusPass    CheckStatus = "PASS"
	CheckStatusFail    CheckStatus = "FAIL"
	CheckStatusWarning CheckStatus = "WARNING"
	CheckStatusInfo    CheckStatus = "INFO"
)

// Valid reports whether s is one of the known check statuses.
func (s CheckStatus) Valid() bool {
	switch s {
	case CheckStatusPass, CheckStatusFail, CheckStatusWarning, CheckStatusInfo:
		return true
	}
	return false
}

// Category identifies one of the test suites the harness knows how to run.
type Category string

const (
	CategoryFunctional  Category = "functional"
	CategoryPerformance Category = "performance"
	CategorySecurity    Category = "security"
	CategoryValidation  Category = "validation"
)

// ExecutionOrder is the fixed order suites run in when "all" is requested.
// Suites mutate named scratch collections, so the order must be deterministic
// and the suites must never run concurrently.
var ExecutionOrder = []Category{
	CategoryFunctional,
	CategoryPerformance,
	CategorySecurity,
	CategoryValidation,
}

// ParseCategory converts a suite selector string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	for _, known := range ExecutionOrder {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown suite category %q (expected one of functional, performance, security, validation)", s)
}

// DisplayName returns a human-readable title for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryFunctional:
		return "Functional Tests"
	case CategoryPerformance:
		return "Performance Tests"
	case CategorySecurity:
		return "Security Tests"
	case CategoryValidation:
		return "Data Validation Tests"
	}
	return string(c)
}

// CheckResult is one evaluated assertion. Immutable once produced.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Details string      `json:"details"`
}

// SuiteResult is the output of one suite executor invocation: a named
// category, a timestamp and the ordered sequence of check results. Metrics
// carries the numeric measurements the performance suite records (rates,
// wall-clock timings) so report sinks can chart them without re-parsing
// check details.
type SuiteResult struct {
	Category  Category           `json:"category"`
	Timestamp time.Time          `json:"timestamp"`
	Checks    []CheckResult      `json:"checks"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// CheckCounts holds per-status totals for a suite's checks.
type CheckCounts struct {
	Passed   int
	Failed   int
	Warnings int
	Infos    int
}

// Counts tallies the suite's checks by status.
func (r *SuiteResult) Counts() CheckCounts {
	var c CheckCounts
	for _, check := range r.Checks {
		switch check.Status {
		case CheckStatusPass:
			c.Passed++
		case CheckStatusFail:
			c.Failed++
		case CheckStatusWarning:
			c.Warnings++
		case CheckStatusInfo:
			c.Infos++
		}
	}
	return c
}

// RunSummary is the aggregate record of one full runner invocation.
//
// Suite-level PASS/FAIL is derived solely from each suite's subprocess exit
// code. A suite can record FAIL checks internally and still exit zero; the
// summary will mark it PASS. That looseness is inherited behavior and is
// surfaced (not fixed) by reporting check counts alongside suite status.
type RunSummary struct {
	Timestamp       time.Time               `json:"timestamp"`
	TotalSuites     int                     `json:"total_suites"`
	PassedSuites    int                     `json:"passed_suites"`
	FailedSuites    int                     `json:"failed_suites"`
	OverallStatus   CheckStatus             `json:"overall_status"`
	SuiteResults    map[Category]CheckStatus `json:"suite_results"`
	Recommendations []string                `json:"recommendations"`
}

// DefaultRecommendations mirrors the advisory block every summary report
// carries.
var DefaultRecommendations = []string{
	"Review failed test cases and address issues",
	"Monitor performance metrics trends",
	"Implement security recommendations",
	"Maintain data quality standards",
	"Update test cases as system evolves",
}

// NewRunSummary derives a summary from per-suite success flags.
// OverallStatus is PASS iff every suite succeeded.
func NewRunSummary(results map[Category]bool) RunSummary {
	summary := RunSummary{
		Timestamp:       time.Now(),
		TotalSuites:     len(results),
		OverallStatus:   CheckStatusPass,
		SuiteResults:    make(map[Category]CheckStatus, len(results)),
		Recommendations: DefaultRecommendations,
	}
	for cat, ok := range results {
		if ok {
			summary.PassedSuites++
			summary.SuiteResults[cat] = CheckStatusPass
		} else {
			summary.FailedSuites++
			summary.SuiteResults[cat] = CheckStatusFail
			summary.OverallStatus = CheckStatusFail
		}
	}
	return summary
}

// AllPassed reports whether every suite in the summary succeeded.
func (s *RunSummary) AllPassed() bool {
	return s.OverallStatus == CheckStatusPass
}

// ReportTimestamp formats t the way persisted report filenames expect.
// Lexicographic order of the result equals chronological order.
func ReportTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
