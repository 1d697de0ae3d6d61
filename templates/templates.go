// Package templates holds the embedded HTML assets and the template
// functions the report sinks use.
package templates

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/adityadwic/mongo-acceptor/types"
)

// ReportHTML is the static report template rendered by the HTML sink.
//
//go:embed report.html.tmpl
var ReportHTML string

// DashboardHTML is the single-page dashboard served at "/". It polls
// /api/data and renders entirely client-side.
//
//go:embed dashboard.html
var DashboardHTML []byte

// Funcs returns the template functions the report template relies on.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"statusClass": func(status types.CheckStatus) string {
			return strings.ToLower(string(status))
		},
		"displayName": func(cat types.Category) string {
			return cat.DisplayName()
		},
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"formatMetric": func(v float64) string {
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%.4f", v)
		},
	}
}
