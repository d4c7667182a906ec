package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_feed"

// Metrics holds the Prometheus counters, histograms, and gauges for the feed loader.
type Metrics struct {
	LoadsStarted     prometheus.Counter
	LoadsRejected    prometheus.Counter
	Deliveries       *prometheus.CounterVec // labels: outcome={records,empty,none}
	StaleDeliveries  prometheus.Counter
	RecordsDelivered prometheus.Counter
	LoaderState      prometheus.Gauge // 0 idle, 1 loading, 2 delivered

	// Feed request metrics.
	FetchErrors   *prometheus.CounterVec // labels: kind={invalid_url,transport,bad_status}
	FetchDuration prometheus.Histogram
	ParseErrors   *prometheus.CounterVec // labels: kind={malformed_json,missing_field}

	// Kafka publishing metrics.
	MessagesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all loader metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.LoadsStarted,
		m.LoadsRejected,
		m.Deliveries,
		m.StaleDeliveries,
		m.RecordsDelivered,
		m.LoaderState,
		m.FetchErrors,
		m.FetchDuration,
		m.ParseErrors,
		m.MessagesPublished,
		m.PublishErrors,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are not registered with the
// default registry, for one-shot tools that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LoadsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_started_total",
			Help:      "Total load cycles started.",
		}),
		LoadsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_rejected_total",
			Help:      "Start requests rejected because a load was already in flight.",
		}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Deliveries to the observer by outcome.",
		}, []string{"outcome"}),
		StaleDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_deliveries_total",
			Help:      "Deliveries that arrived after the load cycle was reset.",
		}),
		RecordsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_delivered_total",
			Help:      "Total earthquake records delivered.",
		}),
		LoaderState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loader_state",
			Help:      "Current loader state: 0 idle, 1 loading, 2 delivered.",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Feed request failures by kind.",
		}, []string{"kind"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Feed request duration in seconds, including body read.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Feed parses that stopped early, by kind.",
		}, []string{"kind"}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Earthquake messages written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish attempts.",
		}),
	}
}
