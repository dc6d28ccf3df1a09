package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeAI       = "ai"
	OutcomeFallback = "fallback"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesagent_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"method", "route", "status"},
	)

	AITaskTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesagent_ai_task_total",
			Help: "AI task results by outcome (ai or fallback)",
		},
		[]string{"task", "outcome"},
	)

	AICompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesagent_ai_completion_duration_seconds",
			Help:    "Chat completion round trip in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"task", "status"},
	)

	RAGRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesagent_rag_request_total",
			Help: "Calls to the retrieval service",
		},
		[]string{"operation", "status"},
	)

	CacheLookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesagent_cache_lookup_total",
			Help: "Response cache lookups",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func IncrementAITask(task, outcome string) {
	AITaskTotal.WithLabelValues(task, outcome).Inc()
}

func RecordAICompletion(task, status string, duration time.Duration) {
	AICompletionDuration.WithLabelValues(task, status).Observe(duration.Seconds())
}

func IncrementRAGRequest(operation, status string) {
	RAGRequestTotal.WithLabelValues(operation, status).Inc()
}

func IncrementCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupTotal.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
