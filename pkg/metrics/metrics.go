// Package metrics provides Prometheus metrics for the live commentary
// pipeline. All collectors register against a package-local registry so
// tests never trip duplicate-registration panics on the default one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nbastats"

var registry = prometheus.NewRegistry()

// GetRegistry exposes the registry for the /metrics HTTP handler.
func GetRegistry() *prometheus.Registry {
	return registry
}

var (
	factory = promauto.With(registry)

	// Feed and normalization.
	playsFetched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "feed", Name: "plays_fetched_total",
		Help: "Play records fetched from the upstream feed.",
	})
	playsNormalized = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "pipeline", Name: "plays_normalized_total",
		Help: "Plays successfully normalized.",
	})
	playsDropped = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "pipeline", Name: "plays_dropped_total",
		Help: "Plays skipped as malformed or invariant-violating.",
	}, []string{"reason"})
	playsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "pipeline", Name: "plays_duplicate_total",
		Help: "Plays filtered as duplicate or out-of-order delivery.",
	})

	// Detection and composition.
	factsDetected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "pipeline", Name: "facts_detected_total",
		Help: "Facts emitted by the tracker and milestone detector.",
	}, []string{"kind"})
	messagesComposed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "pipeline", Name: "messages_composed_total",
		Help: "Messages produced by the composer.",
	})
	messagesAppended = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "history", Name: "messages_appended_total",
		Help: "Messages newly appended to a game history.",
	})
	messagesDeduped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "history", Name: "messages_deduped_total",
		Help: "Messages skipped by the history dedup key.",
	})

	// Rewrite collaborator.
	rewriteCalls = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "rewrite", Name: "calls_total",
		Help: "Rewrite collaborator invocations.",
	})
	rewriteFallbacks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "rewrite", Name: "fallbacks_total",
		Help: "Rewrite calls that fell back to the literal gist.",
	})
	rewriteLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "rewrite", Name: "latency_ms",
		Help:    "Rewrite call latency in milliseconds.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2000, 5000},
	})

	// Persistence.
	historyWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "history", Name: "writes_total",
		Help: "Atomic history file writes.",
	})
	historyWriteErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "history", Name: "write_errors_total",
		Help: "Failed history writes surfaced to the caller.",
	})

	// Scheduling and runners.
	activeGames = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "app", Name: "active_games",
		Help: "Game runners currently tracked.",
	})
	queueSize = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "queue", Name: "size",
		Help: "Queued plays per game runner.",
	}, []string{"game_id"})

	// HTTP surface.
	httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by endpoint, method, and status.",
	}, []string{"endpoint", "method", "status"})
	httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method"})
)

// Recording helpers. Call sites stay one line.

func RecordPlaysFetched(n int) { playsFetched.Add(float64(n)) }

func RecordPlayNormalized() { playsNormalized.Inc() }

func RecordPlayDropped(reason string) { playsDropped.WithLabelValues(reason).Inc() }

func RecordPlayDuplicate() { playsDuplicate.Inc() }

func RecordFactDetected(kind string) { factsDetected.WithLabelValues(kind).Inc() }

func RecordMessagesComposed(n int) { messagesComposed.Add(float64(n)) }

func RecordMessagesAppended(n int) { messagesAppended.Add(float64(n)) }

func RecordMessagesDeduped(n int) { messagesDeduped.Add(float64(n)) }

func RecordRewriteCall() { rewriteCalls.Inc() }

func RecordRewriteFallback() { rewriteFallbacks.Inc() }

func RecordRewriteLatency(ms float64) { rewriteLatency.Observe(ms) }

func RecordHistoryWrite() { historyWrites.Inc() }

func RecordHistoryWriteError() { historyWriteErrors.Inc() }

func UpdateActiveGames(n int) { activeGames.Set(float64(n)) }
func UpdateQueueSize(gameID string, n int) {
	queueSize.WithLabelValues(gameID).Set(float64(n))
}
func ReleaseQueue(gameID string) {
	queueSize.DeleteLabelValues(gameID)
}

func RecordHTTPRequest(endpoint, method, status string) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}
