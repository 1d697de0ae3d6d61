package reporting

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/adityadwic/mongo-acceptor/templates"
	"github.com/adityadwic/mongo-acceptor/types"
)

// HTMLSink renders a Context into one self-contained HTML file. Charts are
// embedded as base64 data URIs so the report can be mailed around or archived
// as a single artifact.
type HTMLSink struct {
	tmpl *template.Template
}

// NewHTMLSink parses the embedded report template.
func NewHTMLSink() (*HTMLSink, error) {
	tmpl, err := template.New("report").Funcs(templates.Funcs()).Parse(templates.ReportHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLSink{tmpl: tmpl}, nil
}

type reportSection struct {
	Category types.Category
	Result   *types.SuiteResult
}

type reportChart struct {
	Title   string
	DataURI template.URL
}

type reportView struct {
	GeneratedAt time.Time
	Summary     *types.RunSummary
	Charts      []reportChart
	Sections    []reportSection
}

// Generate writes mongodb_test_report_<timestamp>.html into reportsDir and
// returns its path. Every category gets a section; missing results render
// as a placeholder rather than being silently dropped.
func (s *HTMLSink) Generate(ctx *Context, reportsDir string) (string, error) {
	view := reportView{
		GeneratedAt: ctx.GeneratedAt,
		Summary:     ctx.Summary,
	}
	for _, cat := range types.ExecutionOrder {
		view.Sections = append(view.Sections, reportSection{Category: cat, Result: ctx.Suite(cat)})
	}

	charts, err := PerformanceCharts(ctx.Performance)
	if err != nil {
		return "", err
	}
	for _, c := range charts {
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG)
		view.Charts = append(view.Charts, reportChart{Title: c.Title, DataURI: template.URL(uri)})
	}

	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	name := fmt.Sprintf("mongodb_test_report_%s.html", types.ReportTimestamp(ctx.GeneratedAt))
	path := filepath.Join(reportsDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML report: %w", err)
	}
	defer f.Close()

	if err := s.tmpl.Execute(f, view); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	return path, nil
}
