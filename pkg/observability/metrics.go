package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics records counters, gauges and distributions. The worker backs it
// with Prometheus; the CLI and tests use NoopMetrics or InMemoryMetrics.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is one metric label.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// series holds every kind of value recorded under one name and label set.
type series struct {
	count   int64
	gauge   float64
	samples []float64
	timings []time.Duration
}

// InMemoryMetrics keeps recorded values per series so tests can read them
// back.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	series map[string]*series
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: make(map[string]*series)}
}

func (m *InMemoryMetrics) update(name string, tags []Tag, fn func(s *series)) {
	key := seriesKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		s = &series{}
		m.series[key] = s
	}
	fn(s)
}

func (m *InMemoryMetrics) read(name string, tags []Tag) series {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[seriesKey(name, tags)]
	if !ok {
		return series{}
	}
	out := *s
	out.samples = append([]float64(nil), s.samples...)
	out.timings = append([]time.Duration(nil), s.timings...)
	return out
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.count += value })
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.gauge = value })
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.samples = append(s.samples, value) })
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.timings = append(s.timings, duration) })
}

// GetCounter returns the sum of a counter series.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	return m.read(name, tags).count
}

// GetGauge returns the last value set on a gauge series.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	return m.read(name, tags).gauge
}

// GetHistogram returns the samples of a histogram series in record order.
func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	return m.read(name, tags).samples
}

// GetTimings returns the durations of a timing series in record order.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	return m.read(name, tags).timings
}

// seriesKey identifies a series independent of tag order.
func seriesKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	pairs := make([]string, len(tags))
	for i, t := range tags {
		pairs[i] = t.Key + "=" + t.Value
	}
	sort.Strings(pairs)
	return name + "{" + strings.Join(pairs, ",") + "}"
}

// Metric names. PrometheusMetrics maps the dots to underscores.
const (
	MetricOperationTotal    = "sitework.operation.total"
	MetricOperationDuration = "sitework.operation.duration"
	MetricOperationErrors   = "sitework.operation.errors"

	MetricSubstageTransitions = "sitework.substage.transitions"
	MetricPaymentsCommitted   = "sitework.payments.committed"
	MetricPaymentBatchTotal   = "sitework.payments.batch_total"

	MetricCacheHits   = "sitework.cache.hits"
	MetricCacheMisses = "sitework.cache.misses"

	MetricEventsPublished = "sitework.events.published"
	MetricEventsFailed    = "sitework.events.failed"
	MetricOutboxLag       = "sitework.outbox.lag_seconds"
)
