// Package suites contains the four suite executors. Each executor drops and
// recreates its scratch collections, runs a fixed sequence of checks against
// the target database, and serializes the accumulated results to a
// category-specific report file.
package suites

import (
	"context"

	"go.uber.org/zap"

	"github.com/adityadwic/mongo-acceptor/types"
)

// Config carries what a suite executor needs: where the target is, how to
// prefix its scratch databases, where results go, and the performance knobs.
type Config struct {
	MongoURI   string
	DBPrefix   string
	ReportsDir string

	// Performance suite sizing.
	DocumentCount   int
	QueryIterations int
	Workers         int
	OpsPerWorker    int

	Log *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// Suite is one category of checks executed as a unit.
type Suite interface {
	Category() types.Category
	// Run executes the full check sequence and writes the category report
	// file. The returned error covers setup or teardown faults only;
	// individual check failures are recorded in the result, not returned.
	Run(ctx context.Context) (*types.SuiteResult, error)
}

// ForCategory returns the executor for the given category.
func ForCategory(cat types.Category, cfg Config) Suite {
	switch cat {
	case types.CategoryFunctional:
		return &FunctionalSuite{cfg: cfg}
	case types.CategoryPerformance:
		return &PerformanceSuite{cfg: cfg}
	case types.CategorySecurity:
		return &SecuritySuite{cfg: cfg}
	case types.CategoryValidation:
		return &ValidationSuite{cfg: cfg}
	}
	return nil
}
