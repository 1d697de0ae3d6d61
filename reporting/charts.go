package reporting

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/adityadwic/mongo-acceptor/types"
)

// Chart is a rendered PNG with a caption, ready for embedding.
type Chart struct {
	Title string
	PNG   []byte
}

// PerformanceCharts renders the standard charts for a performance suite
// result. Metrics that were never recorded simply produce no chart.
func PerformanceCharts(perf *types.SuiteResult) ([]Chart, error) {
	if perf == nil {
		return nil, nil
	}
	var charts []Chart

	single, okS := perf.Metrics["single_insert_rate"]
	bulk, okB := perf.Metrics["bulk_insert_rate"]
	if okS && okB {
		png, err := barChartPNG("Insert Throughput", "documents/second",
			[]string{"single", "bulk"}, []float64{single, bulk})
		if err != nil {
			return nil, err
		}
		charts = append(charts, Chart{Title: "Insert Throughput", PNG: png})
	}

	if labels, values := metricSeries(perf.Metrics, "query_", "_qps"); len(labels) > 0 {
		png, err := barChartPNG("Query Throughput", "queries/second", labels, values)
		if err != nil {
			return nil, err
		}
		charts = append(charts, Chart{Title: "Query Throughput", PNG: png})
	}

	if rate, ok := perf.Metrics["concurrent_ops_per_second"]; ok {
		labels := []string{"concurrent"}
		values := []float64{rate}
		if okB {
			labels = append(labels, "bulk insert")
			values = append(values, bulk)
		}
		png, err := barChartPNG("Concurrent Operations", "operations/second", labels, values)
		if err != nil {
			return nil, err
		}
		charts = append(charts, Chart{Title: "Concurrent Operations", PNG: png})
	}

	return charts, nil
}

// metricSeries collects metrics matching prefix*suffix, sorted by the label
// between them.
func metricSeries(metrics map[string]float64, prefix, suffix string) ([]string, []float64) {
	var labels []string
	for name := range metrics {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			labels = append(labels, strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
		}
	}
	sort.Strings(labels)
	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = metrics[prefix+label+suffix]
	}
	return labels, values
}

func barChartPNG(title, ylabel string, labels []string, values []float64) ([]byte, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("chart %q: %d labels for %d values", title, len(labels), len(values))
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", title, err)
	}
	bars.LineStyle.Width = 0
	bars.Color = color.RGBA{R: 0x2e, G: 0x86, B: 0xc1, A: 0xff}
	p.Add(bars)
	p.NominalX(labels...)

	w, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", title, err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
