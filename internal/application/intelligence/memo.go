package intelligence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
)

// memo wraps an IntelligenceCache with JSON encoding.  Every failure is
// logged and reported as a miss.
type memo struct {
	cache   IntelligenceCache
	ttl     time.Duration
	clock   Clock
	metrics MetricsRecorder
	logger  logging.Logger
}

func newMemo(cache IntelligenceCache, cfg *Config, metrics MetricsRecorder, logger logging.Logger) *memo {
	if cache == nil {
		cache = NoopCache{}
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &memo{cache: cache, ttl: cfg.CacheTTL, clock: cfg.Clock, metrics: metrics, logger: logging.OrNop(logger)}
}

func (m *memo) load(ctx context.Context, key CacheKey, dest interface{}) bool {
	raw, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		m.logger.Warn("intelligence cache get failed", logging.String("key", key.String()), logging.Err(err))
		m.metrics.RecordCacheLookup(key.Type, false)
		return false
	}
	if !ok || len(raw) == 0 {
		m.metrics.RecordCacheLookup(key.Type, false)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		m.logger.Warn("intelligence cache entry undecodable", logging.String("key", key.String()), logging.Err(err))
		m.metrics.RecordCacheLookup(key.Type, false)
		return false
	}
	m.metrics.RecordCacheLookup(key.Type, true)
	return true
}

func (m *memo) store(ctx context.Context, key CacheKey, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		m.logger.Warn("intelligence cache encode failed", logging.String("key", key.String()), logging.Err(err))
		return
	}
	if err := m.cache.Set(ctx, key, raw, m.clock.Now().Add(m.ttl)); err != nil {
		m.logger.Warn("intelligence cache set failed", logging.String("key", key.String()), logging.Err(err))
	}
}

//Personal.AI order the ending
