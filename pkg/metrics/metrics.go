// Package metrics exposes Prometheus instrumentation for chart fetching,
// rendering and hover dispatch.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inspector"

// Registry holds every collector of this package.
var Registry = prometheus.NewRegistry()

var (
	fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Chart data fetches by result.",
	}, []string{"result"})

	fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Latency of chart data fetches.",
		Buckets:   prometheus.DefBuckets,
	})

	renderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_total",
		Help:      "Rendered charts by chart key and output.",
	}, []string{"chart", "output"})

	hoverTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hover_events_total",
		Help:      "Hover events dispatched to the hover store by chart key.",
	}, []string{"chart"})

	subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "poller_subscribers",
		Help:      "Active poller subscriptions.",
	})
)

func init() {
	Registry.MustRegister(fetchTotal, fetchDuration, renderTotal, hoverTotal, subscribers)
}

// ObserveFetch records one fetch and its latency.
func ObserveFetch(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	fetchTotal.WithLabelValues(result).Inc()
	fetchDuration.Observe(elapsed.Seconds())
}

// ObserveRender records a rendered chart.
func ObserveRender(chart, output string) {
	renderTotal.WithLabelValues(chart, output).Inc()
}

// ObserveHover records a dispatched hover event.
func ObserveHover(chart string) {
	hoverTotal.WithLabelValues(chart).Inc()
}

// SetSubscribers reports the number of active poller subscriptions.
func SetSubscribers(n int) {
	subscribers.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
