package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter(MetricCacheHits, 1)
		m.Gauge(MetricOutboxLag, 2.5)
		m.Histogram(MetricPaymentBatchTotal, 1200)
		m.Timing(MetricOperationDuration, time.Second)
	})
}

func TestInMemoryMetrics(t *testing.T) {
	t.Run("counters sum per label set", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter(MetricSubstageTransitions, 1, T("to", "ongoing"))
		m.Counter(MetricSubstageTransitions, 1, T("to", "finished"))
		m.Counter(MetricSubstageTransitions, 2, T("to", "ongoing"))

		assert.Equal(t, int64(3), m.GetCounter(MetricSubstageTransitions, T("to", "ongoing")))
		assert.Equal(t, int64(1), m.GetCounter(MetricSubstageTransitions, T("to", "finished")))
		assert.Zero(t, m.GetCounter(MetricSubstageTransitions))
	})

	t.Run("gauge keeps the last value", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Gauge(MetricOutboxLag, 12)
		m.Gauge(MetricOutboxLag, 0.5)
		assert.Equal(t, 0.5, m.GetGauge(MetricOutboxLag))
	})

	t.Run("distributions keep record order", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Histogram(MetricPaymentBatchTotal, 1200)
		m.Histogram(MetricPaymentBatchTotal, 450.5)
		m.Timing(MetricOperationDuration, 3*time.Millisecond, T("operation", "pay"))

		assert.Equal(t, []float64{1200, 450.5}, m.GetHistogram(MetricPaymentBatchTotal))
		assert.Equal(t, []time.Duration{3 * time.Millisecond}, m.GetTimings(MetricOperationDuration, T("operation", "pay")))
		assert.Nil(t, m.GetTimings(MetricOperationDuration))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		m := NewInMemoryMetrics()
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Counter(MetricEventsPublished, 1)
			}()
		}
		wg.Wait()
		assert.Equal(t, int64(50), m.GetCounter(MetricEventsPublished))
	})
}

func TestSeriesKey(t *testing.T) {
	tests := []struct {
		name string
		tags []Tag
		want string
	}{
		{"no tags", nil, "sitework.cache.hits"},
		{"one tag", []Tag{T("operation", "progress")}, "sitework.cache.hits{operation=progress}"},
		{"tag order does not matter", []Tag{T("to", "paid"), T("from", "finished")}, "sitework.cache.hits{from=finished,to=paid}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seriesKey(MetricCacheHits, tt.tags))
		})
	}
}
