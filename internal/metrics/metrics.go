// Package metrics builds the in-process Prometheus registry: tick
// duration, per-market book size, HTTP request counters/latency, and
// rate-limit rejections. Export plumbing (the actual /metrics scrape
// endpoint) is an external collaborator per spec.md §1 — this package only
// owns the registry and the instruments, grounded on the teacher's
// pkg/metrics init-time MustRegister pattern.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dlob_tick_duration_seconds",
		Help:    "Wall-clock duration of one BookBuilder tick across all markets",
		Buckets: prometheus.DefBuckets,
	})

	BookSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dlob_book_size",
		Help: "Number of resting orders currently published for a market",
	}, []string{"market", "side"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dlob_http_requests_total",
		Help: "Total HTTP requests handled",
	}, []string{"path", "method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dlob_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})

	RateLimitRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dlob_rate_limit_rejections_total",
		Help: "Requests rejected by the per-IP rate limiter",
	}, []string{"path"})

	OrderIndexSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dlob_order_index_size",
		Help: "Number of user accounts currently resident in OrderIndex",
	})
)

func init() {
	prometheus.MustRegister(
		TickDuration,
		BookSize,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimitRejections,
		OrderIndexSize,
	)
}
