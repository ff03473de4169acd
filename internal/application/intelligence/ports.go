package intelligence

import (
	"context"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
)

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

// Clock supplies "now" to every time-dependent computation.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }

// FixedClock returns a Clock frozen at t.
func FixedClock(t time.Time) Clock { return ClockFunc(func() time.Time { return t }) }

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// Scan outcome labels.
const (
	ScanStatusOK        = "ok"
	ScanStatusFailed    = "failed"
	ScanStatusCancelled = "cancelled"
)

// MetricsRecorder records engine-level operational metrics.
type MetricsRecorder interface {
	RecordScan(status string, duration time.Duration, opportunities int)
	RecordSkippedDate(reason string)
	RecordFallback(component string)
	RecordCacheLookup(analysis AnalysisType, hit bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordScan(string, time.Duration, int)   {}
func (noopMetrics) RecordSkippedDate(string)                {}
func (noopMetrics) RecordFallback(string)                   {}
func (noopMetrics) RecordCacheLookup(AnalysisType, bool)    {}

// NoopMetrics returns a MetricsRecorder that discards everything.
func NoopMetrics() MetricsRecorder { return noopMetrics{} }

// ---------------------------------------------------------------------------
// Outbound messaging
// ---------------------------------------------------------------------------

// ScanRequest asks a worker to scan a requester's connections asynchronously.
type ScanRequest struct {
	RequestID   string    `json:"request_id"`
	RequesterID string    `json:"requester_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// ScanRequestPublisher enqueues scan requests.
type ScanRequestPublisher interface {
	PublishScanRequest(ctx context.Context, req *ScanRequest) error
}

// OpportunityPublisher emits detected opportunities to downstream consumers.
type OpportunityPublisher interface {
	PublishOpportunities(ctx context.Context, requesterID string, opportunities []*gifting.GiftOpportunity) error
}

// ScanLocker serializes scans of the same requester across workers.
// Acquire returns a release function.  A lock held elsewhere is reported as
// CodeConflict; any other error means the lock backend failed.
type ScanLocker interface {
	Acquire(ctx context.Context, requesterID string, ttl time.Duration) (release func(context.Context) error, err error)
}

//Personal.AI order the ending
