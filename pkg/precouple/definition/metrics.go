package definition

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects the small set of counters and the histogram the coupling runtime
// exposes. It is optional: a nil *Metrics disables instrumentation
// entirely, every method is nil-receiver safe.
type Metrics struct {
	registry          *prometheus.Registry
	exchangesSent     *prometheus.CounterVec
	exchangesReceived *prometheus.CounterVec
	iterations        prometheus.Histogram
	nonConvergent     prometheus.Counter
}

// NewMetrics creates a fresh registry and registers every collector
// against it. Pass the result to a CouplingScheme/m2n pair to get
// instrumentation; pass nil to disable it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		exchangesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precouple",
			Name:      "exchanges_sent_total",
			Help:      "Number of data exchanges sent, by data name.",
		}, []string{"data"}),
		exchangesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precouple",
			Name:      "exchanges_received_total",
			Help:      "Number of data exchanges received, by data name.",
		}, []string{"data"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "precouple",
			Name:      "window_iterations",
			Help:      "Number of sub-iterations a time window took to commit.",
			Buckets:   prometheus.LinearBuckets(1, 1, 20),
		}),
		nonConvergent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precouple",
			Name:      "windows_non_convergent_total",
			Help:      "Number of windows committed without meeting every convergence measure.",
		}),
	}
	reg.MustRegister(m.exchangesSent, m.exchangesReceived, m.iterations, m.nonConvergent)
	return m
}

// Registry exposes the underlying prometheus.Registry for HTTP exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ExchangeSent(data string) {
	if m == nil {
		return
	}
	m.exchangesSent.WithLabelValues(data).Inc()
}

func (m *Metrics) ExchangeReceived(data string) {
	if m == nil {
		return
	}
	m.exchangesReceived.WithLabelValues(data).Inc()
}

func (m *Metrics) WindowCommitted(iterations int, converged bool) {
	if m == nil {
		return
	}
	m.iterations.Observe(float64(iterations))
	if !converged {
		m.nonConvergent.Inc()
	}
}
