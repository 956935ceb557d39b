// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	NotificationsReceived *prometheus.CounterVec
	DuplicatesSkipped     prometheus.Counter
	FailedTxSkipped       prometheus.Counter
	DecodeErrors          *prometheus.CounterVec
	EventsEmitted         *prometheus.CounterVec
	SnapshotsEmitted      prometheus.Counter

	// Tracker metrics
	TrackedCurves        prometheus.Gauge
	NearCompletionCurves prometheus.Gauge

	// Enrichment metrics
	EnrichmentRequests  prometheus.Counter
	EnrichmentRetries   prometheus.Counter
	EnrichmentFailures  *prometheus.CounterVec
	EnrichmentEvictions prometheus.Counter
	EnrichmentPending   prometheus.Gauge

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Sink metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	Published       *prometheus.CounterVec
	PublishErrors   *prometheus.CounterVec

	// Health metrics
	LastEventTimestamp prometheus.Gauge
	UptimeSeconds      prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "launch_monitor"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Ingestion metrics
		NotificationsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "notifications_total",
			Help:      "Total number of log notifications received by program",
		}, []string{"program"}),
		DuplicatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "duplicates_total",
			Help:      "Total number of notifications skipped as already processed",
		}),
		FailedTxSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "failed_transactions_total",
			Help:      "Total number of notifications for failed transactions",
		}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "decode_errors_total",
			Help:      "Total number of payloads that failed to decode by tag",
		}, []string{"tag"}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_total",
			Help:      "Total number of domain events emitted by kind",
		}, []string{"kind"}),
		SnapshotsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_total",
			Help:      "Total number of throttled curve snapshots emitted",
		}),

		// Tracker metrics
		TrackedCurves: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "curves",
			Help:      "Current number of tracked bonding curves",
		}),
		NearCompletionCurves: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "near_completion_curves",
			Help:      "Current number of active curves flagged near completion",
		}),

		// Enrichment metrics
		EnrichmentRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "requests_total",
			Help:      "Total number of transaction fetches attempted",
		}),
		EnrichmentRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "retries_total",
			Help:      "Total number of rate limited fetches scheduled for retry",
		}),
		EnrichmentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "failures_total",
			Help:      "Total number of abandoned enrichment tasks by reason",
		}, []string{"reason"}),
		EnrichmentEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "evictions_total",
			Help:      "Total number of pending tasks dropped on overflow",
		}),
		EnrichmentPending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "pending",
			Help:      "Current number of pending enrichment tasks",
		}),

		// Latency metrics
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Sink metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		Published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "messages_total",
			Help:      "Total number of events published by channel",
		}, []string{"channel"}),
		PublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "errors_total",
			Help:      "Total number of failed publishes by channel",
		}, []string{"channel"}),

		// Health metrics
		LastEventTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_event_timestamp",
			Help:      "Unix timestamp of the last emitted event",
		}),
		UptimeSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds",
			Help:      "Seconds since monitoring started",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordNotification increments the notifications counter for program.
func RecordNotification(program string) {
	DefaultMetrics.NotificationsReceived.WithLabelValues(program).Inc()
}

// RecordDuplicate increments the duplicate notifications counter.
func RecordDuplicate() {
	DefaultMetrics.DuplicatesSkipped.Inc()
}

// RecordFailedTransaction increments the failed transaction counter.
func RecordFailedTransaction() {
	DefaultMetrics.FailedTxSkipped.Inc()
}

// RecordDecodeError records a payload decode failure.
func RecordDecodeError(tag string) {
	DefaultMetrics.DecodeErrors.WithLabelValues(tag).Inc()
}

// RecordEvent records an emitted event and its time (unix seconds).
func RecordEvent(kind string, unixSeconds int64) {
	DefaultMetrics.EventsEmitted.WithLabelValues(kind).Inc()
	DefaultMetrics.LastEventTimestamp.Set(float64(unixSeconds))
}

// RecordSnapshot increments the snapshot counter.
func RecordSnapshot() {
	DefaultMetrics.SnapshotsEmitted.Inc()
}

// UpdateCurves updates the tracker gauges.
func UpdateCurves(tracked, nearCompletion int) {
	DefaultMetrics.TrackedCurves.Set(float64(tracked))
	DefaultMetrics.NearCompletionCurves.Set(float64(nearCompletion))
}

// RecordEnrichmentRequest increments the enrichment fetch counter.
func RecordEnrichmentRequest() {
	DefaultMetrics.EnrichmentRequests.Inc()
}

// RecordEnrichmentRetry increments the enrichment retry counter.
func RecordEnrichmentRetry() {
	DefaultMetrics.EnrichmentRetries.Inc()
}

// RecordEnrichmentFailure records an abandoned enrichment task.
func RecordEnrichmentFailure(reason string) {
	DefaultMetrics.EnrichmentFailures.WithLabelValues(reason).Inc()
}

// RecordEnrichmentEvictions records tasks dropped on overflow.
func RecordEnrichmentEvictions(n int) {
	DefaultMetrics.EnrichmentEvictions.Add(float64(n))
}

// UpdateEnrichmentPending updates the pending tasks gauge.
func UpdateEnrichmentPending(n int) {
	DefaultMetrics.EnrichmentPending.Set(float64(n))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPublish records a publish attempt on channel.
func RecordPublish(channel string, err error) {
	if err != nil {
		DefaultMetrics.PublishErrors.WithLabelValues(channel).Inc()
		return
	}
	DefaultMetrics.Published.WithLabelValues(channel).Inc()
}

// UpdateUptime sets the uptime gauge.
func UpdateUptime(seconds float64) {
	DefaultMetrics.UptimeSeconds.Set(seconds)
}
