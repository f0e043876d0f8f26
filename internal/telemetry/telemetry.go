// Package telemetry exposes Prometheus collectors for the newsroom service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsroom_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	ingestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_ingest_runs_total",
			Help: "Total number of ingestion runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	ingestArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_ingest_articles_total",
			Help: "Total number of articles seen by the ingestion pipeline, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	ingestKeywordFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_ingest_keyword_failures_total",
			Help: "Total number of failed search-service calls, labeled by keyword.",
		},
		[]string{"keyword"},
	)
)

// Article ingestion outcomes. The keyword set is fixed and small, so keyword
// labels stay bounded.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveIngestRun records a completed (or aborted) pipeline run.
func ObserveIngestRun(outcome string) {
	ingestRunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveIngestArticle records the fate of one fetched article.
func ObserveIngestArticle(outcome string) {
	ingestArticlesTotal.WithLabelValues(outcome).Inc()
}

// ObserveKeywordFailure records a failed search call for a keyword.
func ObserveKeywordFailure(keyword string) {
	ingestKeywordFailuresTotal.WithLabelValues(keyword).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
