// Package reporting turns persisted suite result files into human-facing
// artifacts: a standalone HTML report, a spreadsheet and the data feed the
// live dashboard serves. It only ever reads the reports directory; report
// generation is decoupled from test execution and works on whatever result
// files exist.
package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adityadwic/mongo-acceptor/types"
)

const summaryPrefix = "test_summary_"

// Context is the snapshot of the reports directory a report is rendered
// from: the latest run summary plus the latest result per category. Any
// field may be nil when that artifact has never been produced; sinks render
// a placeholder for missing categories instead of failing.
type Context struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     *types.RunSummary  `json:"summary,omitempty"`
	Functional  *types.SuiteResult `json:"functional,omitempty"`
	Performance *types.SuiteResult `json:"performance,omitempty"`
	Security    *types.SuiteResult `json:"security,omitempty"`
	Validation  *types.SuiteResult `json:"validation,omitempty"`
}

// Suite returns the loaded result for the given category, or nil.
func (c *Context) Suite(cat types.Category) *types.SuiteResult {
	switch cat {
	case types.CategoryFunctional:
		return c.Functional
	case types.CategoryPerformance:
		return c.Performance
	case types.CategorySecurity:
		return c.Security
	case types.CategoryValidation:
		return c.Validation
	}
	return nil
}

// Present returns the loaded suite results in execution order.
func (c *Context) Present() []*types.SuiteResult {
	var out []*types.SuiteResult
	for _, cat := range types.ExecutionOrder {
		if sr := c.Suite(cat); sr != nil {
			out = append(out, sr)
		}
	}
	return out
}

// Empty reports whether nothing at all was loaded.
func (c *Context) Empty() bool {
	return c.Summary == nil && len(c.Present()) == 0
}

// SuiteMap returns the loaded results keyed by category.
func (c *Context) SuiteMap() map[types.Category]*types.SuiteResult {
	out := make(map[types.Category]*types.SuiteResult)
	for _, cat := range types.ExecutionOrder {
		if sr := c.Suite(cat); sr != nil {
			out[cat] = sr
		}
	}
	return out
}

// LoadLatest builds a Context from the newest files in the reports
// directory. Timestamped filenames sort lexicographically in chronological
// order, so "latest" is the maximum name per prefix. A directory with no
// matching files yields an empty Context, not an error.
func LoadLatest(reportsDir string) (*Context, error) {
	ctx := &Context{GeneratedAt: time.Now()}

	if path, ok, err := latestFile(reportsDir, summaryPrefix); err != nil {
		return nil, err
	} else if ok {
		var summary types.RunSummary
		if err := readJSON(path, &summary); err != nil {
			return nil, err
		}
		ctx.Summary = &summary
	}

	for _, cat := range types.ExecutionOrder {
		path, ok, err := latestFile(reportsDir, string(cat)+"_report_")
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var result types.SuiteResult
		if err := readJSON(path, &result); err != nil {
			return nil, err
		}
		switch cat {
		case types.CategoryFunctional:
			ctx.Functional = &result
		case types.CategoryPerformance:
			ctx.Performance = &result
		case types.CategorySecurity:
			ctx.Security = &result
		case types.CategoryValidation:
			ctx.Validation = &result
		}
	}
	return ctx, nil
}

// latestFile returns the lexicographically greatest "<prefix>*.json" in dir.
func latestFile(dir, prefix string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read reports directory %q: %w", dir, err)
	}
	best := ""
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		if name > best {
			best = name
		}
	}
	if best == "" {
		return "", false, nil
	}
	return filepath.Join(dir, best), true, nil
}

func readJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report file %q: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse report file %q: %w", path, err)
	}
	return nil
}
