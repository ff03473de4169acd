package intelligence

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// AnalysisType names the kind of derived value held in the cache.
type AnalysisType string

const (
	AnalysisRelationshipContext AnalysisType = "relationship_context"
	AnalysisBudget              AnalysisType = "budget"
	AnalysisCategories          AnalysisType = "categories"
)

// CacheKey identifies a cached value.  RecipientID may be empty for
// requester-wide analyses; Qualifier carries extra inputs such as the
// occasion.
type CacheKey struct {
	RequesterID string
	RecipientID string
	Type        AnalysisType
	Qualifier   string
}

// String renders the key as "requester:recipient:type[:qualifier]".  Each
// segment is query-escaped, so IDs cannot contain the separator or glob
// metacharacters.
func (k CacheKey) String() string {
	parts := []string{escapeKeySegment(k.RequesterID), escapeKeySegment(k.RecipientID), string(k.Type)}
	if k.Qualifier != "" {
		parts = append(parts, escapeKeySegment(strings.ToLower(k.Qualifier)))
	}
	return strings.Join(parts, ":")
}

// RequesterKeyPrefix is the prefix shared by every key String renders for
// requesterID.
func RequesterKeyPrefix(requesterID string) string {
	return escapeKeySegment(requesterID) + ":"
}

func escapeKeySegment(s string) string {
	return url.QueryEscape(s)
}

// CacheInvalidator is implemented by caches that can drop every entry of one
// requester.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, requesterID string) (int64, error)
}

// IntelligenceCache memoizes derived values.  Get reports ok=false for
// missing or expired entries.  The cache is never a correctness dependency:
// callers recompute on any miss or error.
type IntelligenceCache interface {
	Get(ctx context.Context, key CacheKey) (value []byte, ok bool, err error)
	Set(ctx context.Context, key CacheKey, value []byte, expiresAt time.Time) error
}

// ---------------------------------------------------------------------------
// NoopCache
// ---------------------------------------------------------------------------

// NoopCache never stores anything.
type NoopCache struct{}

// Get always misses.
func (NoopCache) Get(context.Context, CacheKey) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (NoopCache) Set(context.Context, CacheKey, []byte, time.Time) error { return nil }

// ---------------------------------------------------------------------------
// MemoryCache
// ---------------------------------------------------------------------------

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process IntelligenceCache.  Expired entries are
// evicted lazily on Get and by Purge.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   Clock
}

// NewMemoryCache creates an empty MemoryCache.  A nil clock uses the system
// clock.
func NewMemoryCache(clock Clock) *MemoryCache {
	if clock == nil {
		clock = SystemClock()
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), clock: clock}
}

// Get returns the value for key if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key CacheKey) ([]byte, bool, error) {
	k := key.String()
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[k]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores value until expiresAt.  Values already expired are not stored.
func (c *MemoryCache) Set(_ context.Context, key CacheKey, value []byte, expiresAt time.Time) error {
	if !c.clock.Now().Before(expiresAt) {
		return nil
	}
	v := make([]byte, len(value))
	copy(v, value)
	c.mu.Lock()
	c.entries[key.String()] = memoryEntry{value: v, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Purge removes every expired entry and returns how many were removed.
func (c *MemoryCache) Purge() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Invalidate removes every entry of requesterID.
func (c *MemoryCache) Invalidate(_ context.Context, requesterID string) (int64, error) {
	prefix := RequesterKeyPrefix(requesterID)
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var (
	_ IntelligenceCache = NoopCache{}
	_ IntelligenceCache = (*MemoryCache)(nil)
	_ CacheInvalidator  = (*MemoryCache)(nil)
)

//Personal.AI order the ending
