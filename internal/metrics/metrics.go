// Package metrics provides Prometheus metrics for codecraft.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Execution metrics
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecraft_runs_total",
			Help: "Total number of code executions by language and outcome",
		},
		[]string{"language", "outcome"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codecraft_run_duration_seconds",
			Help:    "Execution request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"language"},
	)

	// AI metrics
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecraft_ai_requests_total",
			Help: "Total number of AI requests by kind and status",
		},
		[]string{"kind", "status"},
	)

	aiStreamChunks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codecraft_ai_stream_chunks_total",
			Help: "Total number of streamed chat chunks received",
		},
	)

	suggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecraft_autocomplete_suggestions_total",
			Help: "Autocomplete triggers by result",
		},
		[]string{"result"},
	)

	// Store metrics
	snapshotSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecraft_snapshot_saves_total",
			Help: "Snapshot writes by status",
		},
		[]string{"status"},
	)

	treeSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codecraft_tree_nodes",
			Help: "Number of nodes in the virtual file tree",
		},
	)

	historyWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecraft_history_writes_total",
			Help: "Run history writes by status",
		},
		[]string{"status"},
	)
)

// RecordRun records one finished execution. outcome is "succeeded",
// "failed" or "error".
func RecordRun(language, outcome string, d time.Duration) {
	runsTotal.WithLabelValues(language, outcome).Inc()
	runDuration.WithLabelValues(language).Observe(d.Seconds())
}

// RecordAIRequest records a chat or completion request.
func RecordAIRequest(kind string, err error) {
	aiRequestsTotal.WithLabelValues(kind, status(err)).Inc()
}

// RecordStreamChunk counts one streamed chunk.
func RecordStreamChunk() {
	aiStreamChunks.Inc()
}

// RecordSuggestion records an autocomplete trigger result: "offered",
// "empty", "skipped" or "error".
func RecordSuggestion(result string) {
	suggestionsTotal.WithLabelValues(result).Inc()
}

// RecordSnapshotSave records one snapshot write.
func RecordSnapshotSave(err error) {
	snapshotSaves.WithLabelValues(status(err)).Inc()
}

// SetTreeSize sets the current node count.
func SetTreeSize(n int) {
	treeSize.Set(float64(n))
}

// RecordHistoryWrite records one run history write.
func RecordHistoryWrite(err error) {
	historyWrites.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
