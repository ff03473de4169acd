package prometheus

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
)

func TestEngineMetrics_RecordScan(t *testing.T) {
	c := newTestCollector(t)
	m := NewEngineMetrics(c)

	m.RecordScan(intelligence.ScanStatusOK, 200*time.Millisecond, 3)
	m.RecordScan(intelligence.ScanStatusCancelled, time.Second, 0)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_scans_total{status="ok"} 1`)
	assert.Contains(t, out, `test_unit_scans_total{status="cancelled"} 1`)
	assert.Contains(t, out, `test_unit_scan_duration_seconds_count{status="ok"} 1`)
	assert.Contains(t, out, "test_unit_opportunities_detected_total 3")
}

func TestEngineMetrics_SkipsAndFallbacks(t *testing.T) {
	c := newTestCollector(t)
	m := NewEngineMetrics(c)

	m.RecordSkippedDate("malformed_date")
	m.RecordSkippedDate("malformed_date")
	m.RecordFallback("budget")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_skipped_dates_total{reason="malformed_date"} 2`)
	assert.Contains(t, out, `test_unit_fallbacks_total{component="budget"} 1`)
}

func TestEngineMetrics_RecordCacheLookup(t *testing.T) {
	c := newTestCollector(t)
	m := NewEngineMetrics(c)

	m.RecordCacheLookup(intelligence.AnalysisBudget, true)
	m.RecordCacheLookup(intelligence.AnalysisBudget, false)
	m.RecordCacheLookup(intelligence.AnalysisCategories, false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_cache_lookups_total{analysis="budget",result="hit"} 1`)
	assert.Contains(t, out, `test_unit_cache_lookups_total{analysis="budget",result="miss"} 1`)
	assert.Contains(t, out, `test_unit_cache_lookups_total{analysis="categories",result="miss"} 1`)
}

func TestEngineMetrics_RecordHTTPRequest(t *testing.T) {
	c := newTestCollector(t)
	m := NewEngineMetrics(c)

	m.RecordHTTPRequest("GET", "/api/v1/users/{userID}/opportunities", 200, 50*time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="GET",route="/api/v1/users/{userID}/opportunities",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_http_request_duration_seconds_count{method="GET",route="/api/v1/users/{userID}/opportunities"} 1`)
}

func TestEngineMetrics_InfrastructureGauges(t *testing.T) {
	c := newTestCollector(t)
	m := NewEngineMetrics(c)

	m.RecordDBPool("postgres", sql.DBStats{OpenConnections: 5, InUse: 2})
	m.RecordHealth("redis", true)
	m.RecordHealth("kafka", false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_db_pool_open{db="postgres"} 5`)
	assert.Contains(t, out, `test_unit_db_pool_in_use{db="postgres"} 2`)
	assert.Contains(t, out, `test_unit_health_check_status{component="redis"} 1`)
	assert.Contains(t, out, `test_unit_health_check_status{component="kafka"} 0`)
}

//Personal.AI order the ending
