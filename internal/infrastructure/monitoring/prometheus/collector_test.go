package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/testutil"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, nil)
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_RuntimeMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "go_goroutines")
}

func TestCollectorConfigFrom(t *testing.T) {
	cfg := CollectorConfigFrom(config.PrometheusConfig{Namespace: "autogift"}, "worker")
	assert.Equal(t, "autogift", cfg.Namespace)
	assert.Equal(t, "worker", cfg.ConstLabels["service"])
	assert.True(t, cfg.EnableGoMetrics)
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("requests_total", "Requests", "method").WithLabelValues("GET").Add(5)

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_requests_total{method="GET"} 5`)
}

func TestRegisterCounter_DuplicateSharesVector(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dup_total", "help").WithLabelValues().Inc()
	c.RegisterCounter("dup_total", "help").WithLabelValues().Inc()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_dup_total 2")
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("in_flight", "In flight")
	g.WithLabelValues().Set(10)
	g.WithLabelValues().Dec()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_in_flight 9")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterHistogram("latency_seconds", "Latency", nil).WithLabelValues().Observe(0.1)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_bucket{le="0.1"} 1`)
	assert.Contains(t, out, "test_unit_latency_seconds_count 1")
}

func TestRegister_TypeMismatchReturnsNoop(t *testing.T) {
	log := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, log)
	require.NoError(t, err)

	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()
	c.RegisterGauge("conflict", "help").WithLabelValues().Set(10)
	c.RegisterHistogram("conflict", "help", nil).WithLabelValues().Observe(1)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "# TYPE test_unit_conflict counter")
	assert.Equal(t, 2, log.CountLevel("warn"))
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_total", "help", "id").WithLabelValues("1").Inc()
		}()
	}
	wg.Wait()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_concurrent_total{id="1"} 50`)
}

//Personal.AI order the ending
