package prometheus

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
)

// EngineMetrics holds every metric the services export.
type EngineMetrics struct {
	// Scans
	ScansTotal            CounterVec
	ScanDuration          HistogramVec
	OpportunitiesDetected CounterVec
	SkippedDatesTotal     CounterVec

	// Analysis
	FallbacksTotal    CounterVec
	CacheLookupsTotal CounterVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Infrastructure
	DBPoolOpen        GaugeVec
	DBPoolInUse       GaugeVec
	HealthCheckStatus GaugeVec
}

var _ intelligence.MetricsRecorder = (*EngineMetrics)(nil)

// Buckets
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultScanDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
)

// NewEngineMetrics registers all metrics on collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	m := &EngineMetrics{}

	m.ScansTotal = collector.RegisterCounter("scans_total", "Opportunity scans by outcome", "status")
	m.ScanDuration = collector.RegisterHistogram("scan_duration_seconds", "Opportunity scan duration", DefaultScanDurationBuckets, "status")
	m.OpportunitiesDetected = collector.RegisterCounter("opportunities_detected_total", "Gift opportunities emitted by scans")
	m.SkippedDatesTotal = collector.RegisterCounter("skipped_dates_total", "Special dates skipped during scans", "reason")

	m.FallbacksTotal = collector.RegisterCounter("fallbacks_total", "Analyses that fell back to defaults", "component")
	m.CacheLookupsTotal = collector.RegisterCounter("cache_lookups_total", "Intelligence cache lookups", "analysis", "result")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")

	m.DBPoolOpen = collector.RegisterGauge("db_pool_open", "Open database connections", "db")
	m.DBPoolInUse = collector.RegisterGauge("db_pool_in_use", "Database connections in use", "db")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

// RecordScan implements intelligence.MetricsRecorder.
func (m *EngineMetrics) RecordScan(status string, duration time.Duration, opportunities int) {
	m.ScansTotal.WithLabelValues(status).Inc()
	m.ScanDuration.WithLabelValues(status).Observe(duration.Seconds())
	if opportunities > 0 {
		m.OpportunitiesDetected.WithLabelValues().Add(float64(opportunities))
	}
}

// RecordSkippedDate implements intelligence.MetricsRecorder.
func (m *EngineMetrics) RecordSkippedDate(reason string) {
	m.SkippedDatesTotal.WithLabelValues(reason).Inc()
}

// RecordFallback implements intelligence.MetricsRecorder.
func (m *EngineMetrics) RecordFallback(component string) {
	m.FallbacksTotal.WithLabelValues(component).Inc()
}

// RecordCacheLookup implements intelligence.MetricsRecorder.
func (m *EngineMetrics) RecordCacheLookup(analysis intelligence.AnalysisType, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(string(analysis), result).Inc()
}

// RecordHTTPRequest counts one served request.  route is the matched
// pattern, not the raw path.
func (m *EngineMetrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBPool publishes pool statistics for db.
func (m *EngineMetrics) RecordDBPool(db string, stats sql.DBStats) {
	m.DBPoolOpen.WithLabelValues(db).Set(float64(stats.OpenConnections))
	m.DBPoolInUse.WithLabelValues(db).Set(float64(stats.InUse))
}

// RecordHealth publishes a component health probe result.
func (m *EngineMetrics) RecordHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
