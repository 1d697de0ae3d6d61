package acceptor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/adityadwic/mongo-acceptor/flags"
)

// PerfSettings are the performance suite knobs. Defaults mirror the sizes the
// suite has always used; a YAML config file can override them per environment.
type PerfSettings struct {
	DocumentCount   int `yaml:"document_count"`
	QueryIterations int `yaml:"query_iterations"`
	Workers         int `yaml:"workers"`
	OpsPerWorker    int `yaml:"ops_per_worker"`
}

// DefaultPerfSettings returns the built-in performance suite sizing.
func DefaultPerfSettings() PerfSettings {
	return PerfSettings{
		DocumentCount:   1000,
		QueryIterations: 50,
		Workers:         5,
		OpsPerWorker:    50,
	}
}

type fileConfig struct {
	Performance PerfSettings `yaml:"performance"`
}

// Config holds the application configuration. The reports directory is an
// explicit value threaded into the runner, the report generator and the
// dashboard; there is no shared package-level directory state.
type Config struct {
	MongoURI      string
	DBPrefix      string
	ReportsDir    string
	Suite         string
	SkipSetup     bool
	LoadData      bool
	DashboardAddr string
	Perf          PerfSettings
	Log           *zap.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log *zap.Logger) (*Config, error) {
	reportsDir, err := filepath.Abs(ctx.String(flags.ReportsDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for reports directory %q: %w",
			ctx.String(flags.ReportsDir.Name), err)
	}

	cfg := &Config{
		MongoURI:      ctx.String(flags.MongoURI.Name),
		DBPrefix:      ctx.String(flags.DBPrefix.Name),
		ReportsDir:    reportsDir,
		Suite:         ctx.String(flags.Suite.Name),
		SkipSetup:     ctx.Bool(flags.SkipSetup.Name),
		LoadData:      ctx.Bool(flags.LoadData.Name),
		DashboardAddr: ctx.String(flags.DashboardAddr.Name),
		Perf:          DefaultPerfSettings(),
		Log:           log,
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if fc.Performance.DocumentCount > 0 {
		c.Perf.DocumentCount = fc.Performance.DocumentCount
	}
	if fc.Performance.QueryIterations > 0 {
		c.Perf.QueryIterations = fc.Performance.QueryIterations
	}
	if fc.Performance.Workers > 0 {
		c.Perf.Workers = fc.Performance.Workers
	}
	if fc.Performance.OpsPerWorker > 0 {
		c.Perf.OpsPerWorker = fc.Performance.OpsPerWorker
	}
	return nil
}
