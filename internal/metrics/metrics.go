package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every collector exposed on /metrics.
	Registry = prometheus.NewRegistry()

	// Time spent loading, aggregating and charting at startup
	BuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fraudbusters_dashboard_build_seconds",
		Help:    "Duration of the dashboard build (load, aggregate, chart)",
		Buckets: prometheus.DefBuckets,
	})

	// Rows held in memory per loaded table
	TableRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fraudbusters_table_rows",
		Help: "Rows loaded per table",
	}, []string{"table"})

	// Fraud partitions of the loaded transactions
	FraudTransactions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fraudbusters_fraud_partition_transactions",
		Help: "Transactions per fraud partition",
	}, []string{"label"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudbusters_http_requests_total",
		Help: "HTTP requests served",
	}, []string{"method", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fraudbusters_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fraudbusters_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	SnapshotPublishes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudbusters_snapshot_publish_total",
		Help: "Dashboard snapshot publications by outcome",
	}, []string{"outcome"})

	initOnce sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			BuildDuration,
			TableRows,
			FraudTransactions,
			HTTPRequests,
			HTTPDuration,
			RateLimited,
			SnapshotPublishes,
		)
	})
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}
