package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/adityadwic/mongo-acceptor/types"
)

const (
	MetricsNamespace = "mongo_acceptor"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "checks_total",
		Help:      "Count of executed checks",
	}, []string{
		"run_id",
		"suite",
		"status",
	})

	suiteResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_results",
		Help:      "Result of suite subprocess executions (1 pass, 0 fail)",
	}, []string{
		"run_id",
		"suite",
	})

	suiteDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_duration_seconds",
		Help:      "Wall-clock duration of suite subprocess executions",
	}, []string{
		"run_id",
		"suite",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of full runner invocations",
	}, []string{
		"result",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordCheck counts one evaluated check by status.
func RecordCheck(runID string, suite types.Category, status types.CheckStatus) {
	if !status.Valid() {
		return
	}
	checksTotal.WithLabelValues(runID, string(suite), string(status)).Inc()
}

// RecordSuite records the outcome of one suite subprocess.
func RecordSuite(runID string, suite types.Category, passed bool, duration time.Duration) {
	value := 0.0
	if passed {
		value = 1.0
	}
	suiteResults.WithLabelValues(runID, string(suite)).Set(value)
	suiteDuration.WithLabelValues(runID, string(suite)).Set(duration.Seconds())
}

// RecordRun counts one full runner invocation by overall result.
func RecordRun(summary *types.RunSummary) {
	runsTotal.WithLabelValues(strings.ToLower(string(summary.OverallStatus))).Inc()
}
