// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchAttemptsTotal  *prometheus.CounterVec
	fetchRetriesTotal   prometheus.Counter
	rowsFoundTotal      prometheus.Counter
	rowsParsedTotal     prometheus.Counter
	runsTotal           *prometheus.CounterVec
	snapshotWritesTotal *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trending_fetch_attempts_total",
				Help: "Total page fetch attempts, labeled by HTTP status.",
			},
			[]string{"status"},
		)

		fetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trending_fetch_retries_total",
				Help: "Total fetch retries taken after transient failures.",
			},
		)

		rowsFoundTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trending_rows_found_total",
				Help: "Total repository rows located in fetched markup.",
			},
		)

		rowsParsedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trending_rows_parsed_total",
				Help: "Total repository rows successfully parsed into records.",
			},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trending_runs_total",
				Help: "Total scraper runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		snapshotWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trending_snapshot_writes_total",
				Help: "Total snapshot persistence attempts, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetchAttempt records one fetch attempt. Status zero marks a
// transport-level failure.
func ObserveFetchAttempt(status int) {
	Init()
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	fetchAttemptsTotal.WithLabelValues(label).Inc()
}

// ObserveFetchRetry increments the retry counter.
func ObserveFetchRetry() {
	Init()
	fetchRetriesTotal.Inc()
}

// ObserveParse records row counts for one parsed page.
func ObserveParse(found, parsed int) {
	Init()
	rowsFoundTotal.Add(float64(found))
	rowsParsedTotal.Add(float64(parsed))
}

// ObserveRun increments the run counter for the given outcome.
func ObserveRun(outcome string) {
	Init()
	runsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSnapshotWrite records a persistence attempt result
// (written, skipped, or failed).
func ObserveSnapshotWrite(result string) {
	Init()
	snapshotWritesTotal.WithLabelValues(result).Inc()
}
