package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

const (
	defaultKeyPrefix = "autogift:"
	cacheNamespace   = "intel:"
	// ttlJitterRatio shortens each entry by up to this fraction so entries
	// written together do not expire together.
	ttlJitterRatio = 0.1
)

// IntelligenceCache stores analysis results in Redis.  It implements
// intelligence.IntelligenceCache.
type IntelligenceCache struct {
	client *Client
	logger logging.Logger
	prefix string
	now    func() time.Time
	jitter func() float64
}

// CacheOption customises an IntelligenceCache.
type CacheOption func(*IntelligenceCache)

// WithPrefix sets the key prefix shared with other AutoGift keys.
func WithPrefix(prefix string) CacheOption {
	return func(c *IntelligenceCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithClock overrides the time source used to turn expiry instants into TTLs.
func WithClock(now func() time.Time) CacheOption {
	return func(c *IntelligenceCache) { c.now = now }
}

// WithoutJitter stores entries with their exact TTL.
func WithoutJitter() CacheOption {
	return func(c *IntelligenceCache) { c.jitter = func() float64 { return 0 } }
}

// NewIntelligenceCache builds the cache on client.
func NewIntelligenceCache(client *Client, log logging.Logger, opts ...CacheOption) *IntelligenceCache {
	c := &IntelligenceCache{
		client: client,
		logger: logging.OrNop(log),
		prefix: defaultKeyPrefix,
		now:    time.Now,
		jitter: rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *IntelligenceCache) fullKey(key intelligence.CacheKey) string {
	return c.prefix + cacheNamespace + key.String()
}

// Get returns the stored bytes.  A missing key is a miss, not an error.
func (c *IntelligenceCache) Get(ctx context.Context, key intelligence.CacheKey) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	return data, true, nil
}

// Set stores value until expiresAt.  Values that are already expired are
// dropped.
func (c *IntelligenceCache) Set(ctx context.Context, key intelligence.CacheKey, value []byte, expiresAt time.Time) error {
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	ttl -= time.Duration(float64(ttl) * ttlJitterRatio * c.jitter())
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	if err := c.client.Set(ctx, c.fullKey(key), value, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache entry")
	}
	return nil
}

// Invalidate removes every cached analysis of requesterID's relationships.
func (c *IntelligenceCache) Invalidate(ctx context.Context, requesterID string) (int64, error) {
	var (
		deleted int64
		cursor  uint64
	)
	match := c.prefix + cacheNamespace + intelligence.RequesterKeyPrefix(requesterID) + "*"
	for {
		keys, next, err := c.client.Underlying().Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan cache keys")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache keys")
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Debug("intelligence cache invalidated",
		logging.String("requester_id", requesterID),
		logging.Int64("deleted", deleted),
	)
	return deleted, nil
}

var (
	_ intelligence.IntelligenceCache = (*IntelligenceCache)(nil)
	_ intelligence.CacheInvalidator  = (*IntelligenceCache)(nil)
)

//Personal.AI order the ending
