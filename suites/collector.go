package suites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/adityadwic/mongo-acceptor/types"
)

// Collector accumulates CheckResults for one suite invocation. Checks run
// through Run so that an unexpected failure from the target system is
// captured as a FAIL result instead of terminating the executor; one check's
// failure must never prevent later checks in the same suite from running.
type Collector struct {
	category types.Category
	started  time.Time
	checks   []types.CheckResult
	metrics  map[string]float64
	log      *zap.Logger
}

// NewCollector creates a collector for the given category.
func NewCollector(category types.Category, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		category: category,
		started:  time.Now(),
		metrics:  make(map[string]float64),
		log:      log,
	}
}

// Run executes one check. A nil error records PASS with the returned detail;
// a non-nil error (or a panic) records FAIL with the stringified failure.
func (c *Collector) Run(name string, fn func() (string, error)) {
	detail, err := c.guard(fn)
	if err != nil {
		c.Record(name, types.CheckStatusFail, err.Error())
		return
	}
	c.Record(name, types.CheckStatusPass, detail)
}

func (c *Collector) guard(fn func() (string, error)) (detail string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// Record appends a check result with an explicit status. Used directly for
// WARNING and INFO observations that are not pass/fail assertions.
func (c *Collector) Record(name string, status types.CheckStatus, details string) {
	c.checks = append(c.checks, types.CheckResult{Name: name, Status: status, Details: details})
	switch status {
	case types.CheckStatusFail:
		c.log.Warn("check failed", zap.String("suite", string(c.category)), zap.String("check", name), zap.String("details", details))
	default:
		c.log.Info("check completed", zap.String("suite", string(c.category)), zap.String("check", name), zap.String("status", string(status)))
	}
}

// Recordf is Record with a formatted detail string.
func (c *Collector) Recordf(name string, status types.CheckStatus, format string, args ...interface{}) {
	c.Record(name, status, fmt.Sprintf(format, args...))
}

// SetMetric stores a numeric measurement alongside the check results.
func (c *Collector) SetMetric(name string, value float64) {
	c.metrics[name] = value
}

// Result snapshots the collector into an immutable SuiteResult.
func (c *Collector) Result() *types.SuiteResult {
	checks := make([]types.CheckResult, len(c.checks))
	copy(checks, c.checks)
	metrics := make(map[string]float64, len(c.metrics))
	for k, v := range c.metrics {
		metrics[k] = v
	}
	return &types.SuiteResult{
		Category:  c.category,
		Timestamp: time.Now(),
		Checks:    checks,
		Metrics:   metrics,
	}
}

// Write serializes the suite result into the reports directory using the
// timestamped naming convention. Files are never overwritten; each run
// produces a new name.
func (c *Collector) Write(reportsDir string) (*types.SuiteResult, string, error) {
	result := c.Result()
	path, err := WriteSuiteResult(reportsDir, result)
	return result, path, err
}

// WriteSuiteResult persists result as <category>_report_<timestamp>.json.
func WriteSuiteResult(reportsDir string, result *types.SuiteResult) (string, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	name := fmt.Sprintf("%s_report_%s.json", result.Category, types.ReportTimestamp(result.Timestamp))
	path := filepath.Join(reportsDir, name)
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal suite result: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write suite result: %w", err)
	}
	return path, nil
}
