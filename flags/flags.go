package flags

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "MONGO_ACCEPTOR"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	MongoURI = &cli.StringFlag{
		Name:    "mongo-uri",
		Value:   "mongodb://localhost:27017/",
		EnvVars: prefixEnvVars("MONGO_URI"),
		Usage:   "Connection string of the MongoDB instance under test",
	}
	DBPrefix = &cli.StringFlag{
		Name:    "db-prefix",
		Value:   "",
		EnvVars: prefixEnvVars("DB_PREFIX"),
		Usage:   "Optional prefix for the databases the suites create (eg. 'ci42_')",
	}
	ReportsDir = &cli.StringFlag{
		Name:    "reports-dir",
		Value:   "reports",
		EnvVars: prefixEnvVars("REPORTS_DIR"),
		Usage:   "Directory where suite result files and generated reports are written",
	}
	Suite = &cli.StringFlag{
		Name:    "suite",
		Value:   "all",
		EnvVars: prefixEnvVars("SUITE"),
		Usage:   "Suite subset to run: all, functional, performance, security or validation",
	}
	SkipSetup = &cli.BoolFlag{
		Name:    "skip-setup",
		Value:   false,
		EnvVars: prefixEnvVars("SKIP_SETUP"),
		Usage:   "Skip environment setup and the database reachability check",
	}
	LoadData = &cli.BoolFlag{
		Name:    "load-data",
		Value:   false,
		EnvVars: prefixEnvVars("LOAD_DATA"),
		Usage:   "Load fixture data before running suites",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("CONFIG"),
		Usage:   "Path to an optional YAML file with performance suite knobs",
	}
	DashboardAddr = &cli.StringFlag{
		Name:    "dashboard-addr",
		Value:   ":5000",
		EnvVars: prefixEnvVars("DASHBOARD_ADDR"),
		Usage:   "Listen address for the dashboard server",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level: debug, info, warn or error",
	}
)

// Flags contains the full flag set, registered on the app so every
// subcommand (and the suite subprocesses, via the env vars) sees them.
var Flags = []cli.Flag{
	MongoURI,
	DBPrefix,
	ReportsDir,
	Suite,
	SkipSetup,
	LoadData,
	ConfigFile,
	DashboardAddr,
	LogLevel,
}
