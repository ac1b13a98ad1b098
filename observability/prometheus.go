package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// compile-time interface check
var _ MetricFactory = (*PrometheusFactory)(nil)

// PrometheusFactory implements MetricFactory on a Prometheus registerer.
type PrometheusFactory struct {
	reg prometheus.Registerer
}

// NewPrometheusFactory creates a factory registering metrics with reg.
// Pass prometheus.DefaultRegisterer to use the process-global registry.
func NewPrometheusFactory(reg prometheus.Registerer) *PrometheusFactory {
	return &PrometheusFactory{reg: reg}
}

// Counter implements MetricFactory.
func (f *PrometheusFactory) Counter(name string) Counter {
	return promauto.With(f.reg).NewCounter(prometheus.CounterOpts{Name: name})
}

// Histogram implements MetricFactory.
func (f *PrometheusFactory) Histogram(name string) Histogram {
	return promauto.With(f.reg).NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Buckets: prometheus.DefBuckets,
	})
}
