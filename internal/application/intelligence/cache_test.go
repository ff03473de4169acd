package intelligence

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mutableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mutableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mutableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheKey_String(t *testing.T) {
	assert.Equal(t, "alice:bob:budget:birthday", CacheKey{RequesterID: "alice", RecipientID: "bob", Type: AnalysisBudget, Qualifier: "Birthday"}.String())
	assert.Equal(t, "alice::relationship_context", CacheKey{RequesterID: "alice", Type: AnalysisRelationshipContext}.String())
}

func TestCacheKey_EscapesSeparatorsAndGlobs(t *testing.T) {
	a := CacheKey{RequesterID: "a:b", RecipientID: "c", Type: AnalysisBudget}
	b := CacheKey{RequesterID: "a", RecipientID: "b:c", Type: AnalysisBudget}
	assert.NotEqual(t, a.String(), b.String())

	k := CacheKey{RequesterID: "u*", RecipientID: "r?[x]", Type: AnalysisCategories}
	assert.Equal(t, "u%2A:r%3F%5Bx%5D:categories", k.String())
	assert.Equal(t, "u%2A:", RequesterKeyPrefix("u*"))
	assert.True(t, strings.HasPrefix(k.String(), RequesterKeyPrefix("u*")))
	assert.False(t, strings.HasPrefix(k.String(), RequesterKeyPrefix("u")))
}

func TestNoopCache(t *testing.T) {
	var c NoopCache
	key := CacheKey{RequesterID: "a", Type: AnalysisBudget}
	require.NoError(t, c.Set(context.Background(), key, []byte("x"), testNow.Add(time.Hour)))
	v, ok, err := c.Get(context.Background(), key)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestMemoryCache_Expiry(t *testing.T) {
	clock := &mutableClock{now: testNow}
	c := NewMemoryCache(clock)
	ctx := context.Background()
	key := CacheKey{RequesterID: "alice", RecipientID: "bob", Type: AnalysisCategories}

	require.NoError(t, c.Set(ctx, key, []byte(`["Books"]`), testNow.Add(time.Minute)))
	v, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`["Books"]`), v)

	clock.Advance(time.Minute)
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_IgnoresAlreadyExpired(t *testing.T) {
	c := NewMemoryCache(FixedClock(testNow))
	key := CacheKey{RequesterID: "alice", Type: AnalysisBudget}
	require.NoError(t, c.Set(context.Background(), key, []byte("1"), testNow))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	c := NewMemoryCache(FixedClock(testNow))
	key := CacheKey{RequesterID: "alice", Type: AnalysisBudget}
	buf := []byte("abc")
	require.NoError(t, c.Set(context.Background(), key, buf, testNow.Add(time.Hour)))
	buf[0] = 'z'

	v, ok, _ := c.Get(context.Background(), key)
	require.True(t, ok)
	assert.Equal(t, "abc", string(v))
}

func TestMemoryCache_Purge(t *testing.T) {
	clock := &mutableClock{now: testNow}
	c := NewMemoryCache(clock)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, CacheKey{RequesterID: "a", Type: AnalysisBudget}, []byte("1"), testNow.Add(time.Minute)))
	require.NoError(t, c.Set(ctx, CacheKey{RequesterID: "b", Type: AnalysisBudget}, []byte("2"), testNow.Add(time.Hour)))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c := NewMemoryCache(FixedClock(testNow))
	ctx := context.Background()
	expires := testNow.Add(time.Hour)
	require.NoError(t, c.Set(ctx, CacheKey{RequesterID: "alice", RecipientID: "bob", Type: AnalysisBudget}, []byte("1"), expires))
	require.NoError(t, c.Set(ctx, CacheKey{RequesterID: "alice", RecipientID: "mom", Type: AnalysisCategories}, []byte("2"), expires))
	require.NoError(t, c.Set(ctx, CacheKey{RequesterID: "alice:x", RecipientID: "bob", Type: AnalysisBudget}, []byte("3"), expires))
	require.NoError(t, c.Set(ctx, CacheKey{RequesterID: "bob", RecipientID: "alice", Type: AnalysisBudget}, []byte("4"), expires))

	n, err := c.Invalidate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(FixedClock(testNow))
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := CacheKey{RequesterID: "alice", RecipientID: string(rune('a' + i)), Type: AnalysisBudget}
			_ = c.Set(ctx, key, []byte{byte(i)}, testNow.Add(time.Hour))
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, c.Len())
}

//Personal.AI order the ending
