package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	acceptor "github.com/adityadwic/mongo-acceptor"
	"github.com/adityadwic/mongo-acceptor/dashboard"
	"github.com/adityadwic/mongo-acceptor/db"
	"github.com/adityadwic/mongo-acceptor/exitcodes"
	"github.com/adityadwic/mongo-acceptor/fixtures"
	"github.com/adityadwic/mongo-acceptor/flags"
	"github.com/adityadwic/mongo-acceptor/logging"
	"github.com/adityadwic/mongo-acceptor/metrics"
	"github.com/adityadwic/mongo-acceptor/reporting"
	"github.com/adityadwic/mongo-acceptor/runner"
	"github.com/adityadwic/mongo-acceptor/suites"
	"github.com/adityadwic/mongo-acceptor/types"
)

var (
	Version   = "v1.0.0"
	GitCommit = ""
	GitDate   = ""
)

const fixtureCount = 1000

func main() {
	// A missing .env file is fine; the flags fall back to their defaults.
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "mongo-acceptor"
	app.Usage = "MongoDB acceptance test runner"
	app.Description = "mongo-acceptor runs functional, performance, security and validation suites against a MongoDB deployment"
	app.Flags = flags.Flags
	app.DefaultCommand = "run"
	app.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "Run the configured suites and print a summary",
			Action: runAll,
		},
		{
			Name:      "suite",
			Usage:     "Run a single suite in-process (spawned by 'run' for isolation)",
			ArgsUsage: "<functional|performance|security|validation>",
			Action:    runSuite,
		},
		{
			Name:   "report",
			Usage:  "Generate HTML and spreadsheet reports from the latest results",
			Action: generateReports,
		},
		{
			Name:   "dashboard",
			Usage:  "Serve the live results dashboard",
			Action: serveDashboard,
		},
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if acceptor.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if acceptor.IsSuiteFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.SuiteFailure))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.SuiteFailure))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mongo-acceptor failed: %v\n", err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

func setup(cliCtx *cli.Context) (*acceptor.Config, *zap.Logger, error) {
	log, err := logging.New(cliCtx.String(flags.LogLevel.Name))
	if err != nil {
		return nil, nil, acceptor.NewRuntimeError(fmt.Errorf("failed to create logger: %w", err))
	}
	cfg, err := acceptor.NewConfig(cliCtx, log)
	if err != nil {
		return nil, nil, acceptor.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	return cfg, log, nil
}

func runAll(cliCtx *cli.Context) error {
	cfg, log, err := setup(cliCtx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	categories := types.ExecutionOrder
	if cfg.Suite != "all" {
		cat, err := types.ParseCategory(cfg.Suite)
		if err != nil {
			return acceptor.NewRuntimeError(err)
		}
		categories = []types.Category{cat}
	}

	if err := os.MkdirAll(cfg.ReportsDir, 0o755); err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("failed to create reports directory: %w", err))
	}

	if !cfg.SkipSetup {
		if err := db.Ping(cliCtx.Context, cfg.MongoURI); err != nil {
			metrics.RecordErrorDetails("precondition.ping", err)
			return acceptor.NewRuntimeError(fmt.Errorf("database is not reachable at %s: %w", cfg.MongoURI, err))
		}
		log.Info("database reachable", zap.String("uri", cfg.MongoURI))
	}

	if cfg.LoadData {
		if err := loadFixtures(cliCtx.Context, cfg); err != nil {
			return acceptor.NewRuntimeError(fmt.Errorf("failed to load fixture data: %w", err))
		}
	}

	binary, err := os.Executable()
	if err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("failed to resolve own binary path: %w", err))
	}

	r := runner.New(runner.Config{
		Binary:     binary,
		Categories: categories,
		ReportsDir: cfg.ReportsDir,
		MongoURI:   cfg.MongoURI,
		DBPrefix:   cfg.DBPrefix,
		LogLevel:   cliCtx.String(flags.LogLevel.Name),
		ConfigFile: cliCtx.String(flags.ConfigFile.Name),
		Log:        log,
	})
	result, err := r.Run(cliCtx.Context)
	if err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("runner failed: %w", err))
	}

	runID := types.ReportTimestamp(result.Summary.Timestamp)
	for _, exe := range result.Executions {
		metrics.RecordSuite(runID, exe.Category, exe.Passed, exe.Duration)
	}
	metrics.RecordRun(&result.Summary)

	reportData, err := reporting.LoadLatest(cfg.ReportsDir)
	if err != nil {
		log.Warn("failed to load suite reports for display", zap.Error(err))
		reportData = &reporting.Context{}
	}
	for cat, sr := range reportData.SuiteMap() {
		for _, check := range sr.Checks {
			metrics.RecordCheck(runID, cat, check.Status)
		}
	}

	formatter := acceptor.NewConsoleResultFormatter(log)
	if err := formatter.FormatResults(result, reportData.SuiteMap()); err != nil {
		return acceptor.NewRuntimeError(err)
	}

	if !result.Summary.AllPassed() {
		return acceptor.NewSuiteFailureError(fmt.Sprintf("%d of %d suites failed",
			result.Summary.FailedSuites, result.Summary.TotalSuites))
	}
	return nil
}

func runSuite(cliCtx *cli.Context) error {
	cfg, log, err := setup(cliCtx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cat, err := types.ParseCategory(cliCtx.Args().First())
	if err != nil {
		return acceptor.NewRuntimeError(err)
	}

	suite := suites.ForCategory(cat, suites.Config{
		MongoURI:        cfg.MongoURI,
		DBPrefix:        cfg.DBPrefix,
		ReportsDir:      cfg.ReportsDir,
		DocumentCount:   cfg.Perf.DocumentCount,
		QueryIterations: cfg.Perf.QueryIterations,
		Workers:         cfg.Perf.Workers,
		OpsPerWorker:    cfg.Perf.OpsPerWorker,
		Log:             log,
	})

	result, err := suite.Run(cliCtx.Context)
	if err != nil {
		metrics.RecordErrorDetails("suite."+string(cat), err)
		return acceptor.NewRuntimeError(fmt.Errorf("%s suite aborted: %w", cat, err))
	}

	counts := result.Counts()
	log.Info("suite finished",
		zap.String("suite", string(cat)),
		zap.Int("passed", counts.Passed),
		zap.Int("failed", counts.Failed),
		zap.Int("warnings", counts.Warnings))
	return nil
}

func generateReports(cliCtx *cli.Context) error {
	cfg, log, err := setup(cliCtx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	data, err := reporting.LoadLatest(cfg.ReportsDir)
	if err != nil {
		return acceptor.NewRuntimeError(err)
	}
	if data.Empty() {
		return acceptor.NewRuntimeError(fmt.Errorf("no result files found in %s; run the suites first", cfg.ReportsDir))
	}

	htmlSink, err := reporting.NewHTMLSink()
	if err != nil {
		return acceptor.NewRuntimeError(err)
	}
	htmlPath, err := htmlSink.Generate(data, cfg.ReportsDir)
	if err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("failed to generate HTML report: %w", err))
	}
	log.Info("HTML report written", zap.String("path", htmlPath))

	excelPath, err := reporting.NewExcelSink().Generate(data, cfg.ReportsDir)
	if err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("failed to generate spreadsheet: %w", err))
	}
	log.Info("spreadsheet written", zap.String("path", excelPath))
	return nil
}

func serveDashboard(cliCtx *cli.Context) error {
	cfg, log, err := setup(cliCtx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	server := dashboard.NewServer(cfg.ReportsDir, cfg.DashboardAddr, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return acceptor.NewRuntimeError(fmt.Errorf("dashboard server failed: %w", err))
		}
		return nil
	case <-cliCtx.Context.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("dashboard shutdown failed: %w", err))
	}
	log.Info("dashboard stopped")
	return nil
}

func loadFixtures(ctx context.Context, cfg *acceptor.Config) error {
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(ctx) }()

	coll := client.Database(cfg.DBPrefix + "test_db").Collection("users")
	n, err := fixtures.Load(ctx, coll, fixtureCount)
	if err != nil {
		return err
	}
	cfg.Log.Info("fixture data loaded", zap.Int("documents", n))
	return nil
}
