package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a private Prometheus registry.
// Collectors are created on first use; a metric keeps the label names it
// was first recorded with and later calls with other labels are dropped.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	buckets  []float64

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics creates a collector that also exposes Go runtime
// and process metrics.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:   registry,
		buckets:    prometheus.DefBuckets,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if value < 0 {
		return
	}
	fqName := promName(name)
	if !strings.HasSuffix(fqName, "_total") {
		fqName += "_total"
	}
	labels := toLabels(tags)

	m.mu.Lock()
	vec, ok := m.counters[fqName]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: fqName, Help: name}, labelNames(labels))
		if !m.register(vec) {
			m.mu.Unlock()
			return
		}
		m.counters[fqName] = vec
	}
	m.mu.Unlock()

	if c, err := vec.GetMetricWith(labels); err == nil {
		c.Add(float64(value))
	}
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	fqName := promName(name)
	labels := toLabels(tags)

	m.mu.Lock()
	vec, ok := m.gauges[fqName]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: fqName, Help: name}, labelNames(labels))
		if !m.register(vec) {
			m.mu.Unlock()
			return
		}
		m.gauges[fqName] = vec
	}
	m.mu.Unlock()

	if g, err := vec.GetMetricWith(labels); err == nil {
		g.Set(value)
	}
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(promName(name), name, value, tags)
}

// Timing records the duration in seconds under <name>_seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(promName(name)+"_seconds", name, duration.Seconds(), tags)
}

func (m *PrometheusMetrics) observe(fqName, help string, value float64, tags []Tag) {
	labels := toLabels(tags)

	m.mu.Lock()
	vec, ok := m.histograms[fqName]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: fqName, Help: help, Buckets: m.buckets}, labelNames(labels))
		if !m.register(vec) {
			m.mu.Unlock()
			return
		}
		m.histograms[fqName] = vec
	}
	m.mu.Unlock()

	if h, err := vec.GetMetricWith(labels); err == nil {
		h.Observe(value)
	}
}

// register must be called with mu held.
func (m *PrometheusMetrics) register(c prometheus.Collector) bool {
	return m.registry.Register(c) == nil
}

// promName maps a dotted metric name to a Prometheus name.
func promName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}

func toLabels(tags []Tag) prometheus.Labels {
	labels := make(prometheus.Labels, len(tags))
	for _, t := range tags {
		labels[promName(t.Key)] = t.Value
	}
	return labels
}

func labelNames(labels prometheus.Labels) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
