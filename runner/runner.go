// Package runner executes suite subprocesses and aggregates their outcomes
// into a run summary. Each suite runs in its own process so that a crash,
// deadlock or resource leak in one suite cannot take down the orchestrator or
// the suites that follow it.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/adityadwic/mongo-acceptor/flags"
	"github.com/adityadwic/mongo-acceptor/types"
)

// commandFunc builds the command for one suite invocation. Swapped out in
// tests to avoid spawning the real binary.
type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Config describes one runner invocation.
type Config struct {
	// Binary is the executable to spawn for each suite, normally the
	// running binary itself (os.Executable()).
	Binary string
	// Categories lists the suites to run, in order.
	Categories []types.Category
	ReportsDir string

	// Values forwarded to suite subprocesses through the environment.
	MongoURI string
	DBPrefix string
	LogLevel string
	// ConfigFile optionally forwards the performance knobs file.
	ConfigFile string

	Log *zap.Logger
}

// SuiteExecution records the outcome of one suite subprocess.
type SuiteExecution struct {
	Category types.Category `json:"category"`
	Passed   bool           `json:"passed"`
	ExitCode int            `json:"exit_code"`
	Duration time.Duration  `json:"duration_ns"`
}

// Result is the aggregate outcome of a runner invocation.
type Result struct {
	Summary     types.RunSummary
	Executions  []SuiteExecution
	SummaryPath string
}

// Runner spawns one subprocess per suite, sequentially and in the configured
// order. A failing suite never prevents the remaining suites from running;
// its failure is recorded and surfaced in the summary.
type Runner struct {
	cfg        Config
	log        *zap.Logger
	newCommand commandFunc
}

// New creates a Runner. Categories defaults to the full execution order.
func New(cfg Config) *Runner {
	if len(cfg.Categories) == 0 {
		cfg.Categories = types.ExecutionOrder
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		log:        log,
		newCommand: exec.CommandContext,
	}
}

// Run executes every configured suite, derives the run summary and persists
// it to the reports directory.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.cfg.Binary == "" {
		return nil, fmt.Errorf("runner: binary path is required")
	}

	outcomes := make(map[types.Category]bool, len(r.cfg.Categories))
	executions := make([]SuiteExecution, 0, len(r.cfg.Categories))

	for _, cat := range r.cfg.Categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		exe := r.runSuite(ctx, cat)
		outcomes[cat] = exe.Passed
		executions = append(executions, exe)
	}

	summary := types.NewRunSummary(outcomes)
	path, err := WriteSummary(r.cfg.ReportsDir, &summary)
	if err != nil {
		return nil, err
	}
	r.log.Info("run summary written",
		zap.String("path", path),
		zap.String("overall", string(summary.OverallStatus)))

	return &Result{Summary: summary, Executions: executions, SummaryPath: path}, nil
}

func (r *Runner) runSuite(ctx context.Context, cat types.Category) SuiteExecution {
	r.log.Info("starting suite", zap.String("suite", string(cat)))

	var output bytes.Buffer
	cmd := r.newCommand(ctx, r.cfg.Binary, "suite", string(cat))
	cmd.Env = append(os.Environ(), r.childEnv()...)
	cmd.Stdout = io.MultiWriter(os.Stdout, &output)
	cmd.Stderr = io.MultiWriter(os.Stderr, &output)

	started := time.Now()
	err := cmd.Run()
	duration := time.Since(started)

	exe := SuiteExecution{Category: cat, Duration: duration}
	switch e := err.(type) {
	case nil:
		exe.Passed = true
	case *exec.ExitError:
		exe.ExitCode = e.ExitCode()
	default:
		// Spawn failure, not a suite verdict. Treated as a suite
		// failure so the summary never claims an unexecuted pass.
		exe.ExitCode = -1
		r.log.Error("failed to execute suite subprocess",
			zap.String("suite", string(cat)), zap.Error(err))
	}

	if exe.Passed {
		r.log.Info("suite passed",
			zap.String("suite", string(cat)), zap.Duration("duration", duration))
	} else {
		r.log.Warn("suite failed",
			zap.String("suite", string(cat)),
			zap.Int("exit_code", exe.ExitCode),
			zap.Duration("duration", duration))
	}
	return exe
}

// childEnv builds the variables the suite subprocess reads through the CLI
// flag env bindings.
func (r *Runner) childEnv() []string {
	env := []string{
		flags.EnvVarPrefix + "_MONGO_URI=" + r.cfg.MongoURI,
		flags.EnvVarPrefix + "_DB_PREFIX=" + r.cfg.DBPrefix,
		flags.EnvVarPrefix + "_REPORTS_DIR=" + r.cfg.ReportsDir,
	}
	if r.cfg.LogLevel != "" {
		env = append(env, flags.EnvVarPrefix+"_LOG_LEVEL="+r.cfg.LogLevel)
	}
	if r.cfg.ConfigFile != "" {
		env = append(env, flags.EnvVarPrefix+"_CONFIG="+r.cfg.ConfigFile)
	}
	return env
}

// WriteSummary persists summary as test_summary_<timestamp>.json.
func WriteSummary(reportsDir string, summary *types.RunSummary) (string, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	name := fmt.Sprintf("test_summary_%s.json", types.ReportTimestamp(summary.Timestamp))
	path := filepath.Join(reportsDir, name)
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run summary: %w", err)
	}
	return path, nil
}
